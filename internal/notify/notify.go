// Package notify publishes build events to NATS JetStream and keeps the
// latest build status in a KV bucket. Publishing is best effort: a build
// never fails because its notification could not be delivered.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/docpress/docpress/internal/config"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/metrics"
	"github.com/docpress/docpress/internal/retry"
)

const latestStatusKey = "latest"

// Event is the build notification published after each run.
type Event struct {
	BuildID     string          `json:"build_id"`
	Status      manifest.Status `json:"status"`
	Branch      string          `json:"branch"`
	Routes      int             `json:"routes"`
	Documents   int             `json:"documents"`
	BrokenLinks int             `json:"broken_links,omitempty"`
	Issues      []string        `json:"issues,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
	Timestamp   time.Time       `json:"timestamp"`
}

// EventFromManifest derives the notification for a finished build.
func EventFromManifest(m *manifest.BuildManifest) Event {
	return Event{
		BuildID:     m.ID,
		Status:      m.Status,
		Branch:      m.Inputs.Branch,
		Routes:      m.Counts.Routes,
		Documents:   m.Counts.Documents,
		BrokenLinks: m.Counts.BrokenLinks,
		Issues:      m.Issues,
		DurationMS:  m.Duration,
		Timestamp:   m.FinishedAt,
	}
}

// Publisher manages the NATS connection and the status KV bucket.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	kv      jetstream.KeyValue
	subject string
	policy  retry.Policy
	rec     metrics.Recorder
}

// WithRecorder routes publish retry counts to the given recorder.
func (p *Publisher) WithRecorder(rec metrics.Recorder) *Publisher {
	if p == nil || rec == nil {
		return p
	}
	p.rec = rec
	return p
}

// NewPublisher connects to NATS when notify is configured. A nil section
// returns (nil, nil); the caller treats a nil publisher as disabled.
func NewPublisher(cfg *config.NotifyConfig) (*Publisher, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, nil
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, ferrors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.URL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.NotifyError("failed to create JetStream context").
			WithCause(err).
			Build()
	}

	p := &Publisher{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
		policy:  retry.FromConfig(cfg.Retry),
		rec:     metrics.NoopRecorder{},
	}
	if err := p.initKVBucket(cfg.Bucket); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("Notify publisher initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("bucket", cfg.Bucket))
	return p, nil
}

// initKVBucket gets or creates the bucket holding the latest build status.
func (p *Publisher) initKVBucket(bucket string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, err := p.js.KeyValue(ctx, bucket)
	if err == nil {
		p.kv = kv
		return nil
	}

	kv, err = p.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "Latest docpress build status",
		History:     1,
	})
	if err != nil {
		return ferrors.NotifyError("failed to create status bucket").
			WithCause(err).
			WithContext("bucket", bucket).
			Build()
	}
	p.kv = kv
	return nil
}

// PublishBuildEvent publishes the event and updates the latest-status key.
// Both writes retry together under the publisher's policy.
func (p *Publisher) PublishBuildEvent(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return ferrors.NotifyError("failed to marshal build event").WithCause(err).Build()
	}

	attempts := 0
	err = retry.Do(ctx, p.policy, "notify publish", func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			p.rec.IncPublishRetry("notify")
		}
		if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
			return ferrors.NotifyError("failed to publish build event").
				WithCause(err).
				WithContext("subject", p.subject).
				Build()
		}
		if _, err := p.kv.Put(ctx, latestStatusKey, data); err != nil {
			return ferrors.NotifyError("failed to update latest status").
				WithCause(err).
				Build()
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Published build event",
		slog.String("build_id", event.BuildID),
		slog.String("status", string(event.Status)))
	return nil
}

// LatestStatus reads the most recently published build event, or nil when
// nothing has been published yet.
func (p *Publisher) LatestStatus(ctx context.Context) (*Event, error) {
	entry, err := p.kv.Get(ctx, latestStatusKey)
	if err != nil {
		if err == jetstream.ErrKeyNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest status: %w", err)
	}

	var event Event
	if err := json.Unmarshal(entry.Value(), &event); err != nil {
		return nil, fmt.Errorf("unmarshal latest status: %w", err)
	}
	return &event, nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
