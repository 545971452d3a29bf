package search

import (
	"context"
	"log/slog"
	"os"

	algolia "github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"github.com/docpress/docpress/internal/config"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/metrics"
	"github.com/docpress/docpress/internal/retry"
)

// indexAPI is the slice of the Algolia index surface the publisher uses.
type indexAPI interface {
	ClearObjects(opts ...interface{}) (algolia.UpdateTaskRes, error)
	SaveObjects(objects interface{}, opts ...interface{}) (algolia.GroupBatchRes, error)
}

// Publisher replaces the remote search index with the entries of one build.
type Publisher struct {
	index     indexAPI
	indexName string
	policy    retry.Policy
	rec       metrics.Recorder
}

// NewPublisher builds a publisher when search is fully configured. It
// returns nil when the section is absent or the API key env var is empty;
// the build then keeps the local index artifact only.
func NewPublisher(cfg *config.SearchConfig) *Publisher {
	if cfg == nil {
		return nil
	}
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if cfg.AppID == "" || cfg.IndexName == "" || apiKey == "" {
		slog.Info("Search publishing disabled",
			slog.String("index", cfg.IndexName),
			slog.Bool("api_key_present", apiKey != ""))
		return nil
	}

	client := algolia.NewClient(cfg.AppID, apiKey)
	return &Publisher{
		index:     client.InitIndex(cfg.IndexName),
		indexName: cfg.IndexName,
		policy:    retry.FromConfig(cfg.Retry),
		rec:       metrics.NoopRecorder{},
	}
}

// WithRecorder routes publish retry counts to the given recorder.
func (p *Publisher) WithRecorder(rec metrics.Recorder) *Publisher {
	if p == nil || rec == nil {
		return p
	}
	p.rec = rec
	return p
}

// IndexName reports the remote index being published to.
func (p *Publisher) IndexName() string {
	return p.indexName
}

// Publish clears the remote index and saves all entries. The clear+save
// replace cycle is one retryable unit so a retried attempt never leaves
// stale objects behind.
func (p *Publisher) Publish(ctx context.Context, entries []Entry) error {
	attempts := 0
	err := retry.Do(ctx, p.policy, "search index publish", func(context.Context) error {
		attempts++
		if attempts > 1 {
			p.rec.IncPublishRetry("search")
		}
		if _, err := p.index.ClearObjects(); err != nil {
			return ferrors.IndexError("failed to clear search index").
				WithCause(err).
				WithContext("index", p.indexName).
				Build()
		}
		if len(entries) == 0 {
			return nil
		}
		if _, err := p.index.SaveObjects(entries); err != nil {
			return ferrors.IndexError("failed to save search objects").
				WithCause(err).
				WithContext("index", p.indexName).
				Build()
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Search index published",
		slog.String("index", p.indexName),
		slog.Int("entries", len(entries)))
	return nil
}
