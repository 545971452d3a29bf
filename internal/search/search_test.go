package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	algolia "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/meta"
	"github.com/docpress/docpress/internal/metrics"
	"github.com/docpress/docpress/internal/retry"
)

func TestEntryFromPage(t *testing.T) {
	m := &meta.PageMeta{
		Slug:         []string{"guides", "setup"},
		Route:        "/docs/guides/setup",
		Title:        "Set up the wallet",
		Description:  "Install and configure.",
		CanonicalURL: "https://example.com/tinadocs/docs/guides/setup",
	}
	body := []byte("# Set up the wallet\n\n## Install\n\n### From source\n\n#### Internals\n\n## Configure\n")

	entry := EntryFromPage(m, body)

	require.Equal(t, "/docs/guides/setup", entry.ObjectID)
	require.Equal(t, "Set up the wallet", entry.Title)
	require.Equal(t, "Install and configure.", entry.Description)
	require.Equal(t, "guides/setup", entry.Slug)
	require.Equal(t, "https://example.com/tinadocs/docs/guides/setup", entry.URL)
	require.Equal(t, []string{"Install", "From source", "Configure"}, entry.Headings)
}

func TestWriteIndex(t *testing.T) {
	entries := []Entry{
		{ObjectID: "/docs/index", Title: "Welcome", Route: "/docs/index", Slug: "index"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIndex(&buf, entries))

	var decoded []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, entries, decoded)
	require.Contains(t, buf.String(), `"objectID": "/docs/index"`)
}

func TestWriteIndex_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIndex(&buf, nil))
	require.Equal(t, "[]\n", buf.String())
}

type fakeIndex struct {
	mu         sync.Mutex
	clearCalls int
	saveCalls  int
	saved      []Entry
	failClears int
	failSaves  int
}

func (f *fakeIndex) ClearObjects(_ ...interface{}) (algolia.UpdateTaskRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	if f.failClears > 0 {
		f.failClears--
		return algolia.UpdateTaskRes{}, errors.New("algolia unavailable")
	}
	f.saved = nil
	return algolia.UpdateTaskRes{}, nil
}

func (f *fakeIndex) SaveObjects(objects interface{}, _ ...interface{}) (algolia.GroupBatchRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	if f.failSaves > 0 {
		f.failSaves--
		return algolia.GroupBatchRes{}, errors.New("algolia unavailable")
	}
	f.saved = append(f.saved, objects.([]Entry)...)
	return algolia.GroupBatchRes{}, nil
}

func fastPublisher(index indexAPI) *Publisher {
	return &Publisher{
		index:     index,
		indexName: "docs-test",
		policy:    retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 2),
		rec:       metrics.NoopRecorder{},
	}
}

func TestPublish_ReplacesIndex(t *testing.T) {
	index := &fakeIndex{}
	entries := []Entry{
		{ObjectID: "/docs/a", Title: "A"},
		{ObjectID: "/docs/b", Title: "B"},
	}

	require.NoError(t, fastPublisher(index).Publish(context.Background(), entries))

	require.Equal(t, 1, index.clearCalls)
	require.Equal(t, 1, index.saveCalls)
	require.Equal(t, entries, index.saved)
}

func TestPublish_EmptyEntriesStillClears(t *testing.T) {
	index := &fakeIndex{saved: []Entry{{ObjectID: "/docs/stale"}}}

	require.NoError(t, fastPublisher(index).Publish(context.Background(), nil))

	require.Equal(t, 1, index.clearCalls)
	require.Zero(t, index.saveCalls)
	require.Empty(t, index.saved)
}

func TestPublish_RetriesWholeReplaceCycle(t *testing.T) {
	index := &fakeIndex{failSaves: 1}
	entries := []Entry{{ObjectID: "/docs/a", Title: "A"}}

	require.NoError(t, fastPublisher(index).Publish(context.Background(), entries))

	// First attempt cleared then failed to save; the retry repeats both.
	require.Equal(t, 2, index.clearCalls)
	require.Equal(t, 2, index.saveCalls)
	require.Equal(t, entries, index.saved)
}

func TestPublish_GivesUpAfterRetries(t *testing.T) {
	index := &fakeIndex{failClears: 10}

	err := fastPublisher(index).Publish(context.Background(), nil)

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed after 2 retries")
	require.Equal(t, 3, index.clearCalls)
}

func TestNewPublisher_DisabledWithoutKey(t *testing.T) {
	t.Setenv("DOCPRESS_TEST_SEARCH_KEY", "")

	p := NewPublisher(&config.SearchConfig{
		AppID:     "APP123",
		APIKeyEnv: "DOCPRESS_TEST_SEARCH_KEY",
		IndexName: "docs",
	})

	require.Nil(t, p)
	require.Nil(t, NewPublisher(nil))
}

func TestNewPublisher_EnabledWithKey(t *testing.T) {
	t.Setenv("DOCPRESS_TEST_SEARCH_KEY", "admin-key")

	p := NewPublisher(&config.SearchConfig{
		AppID:     "APP123",
		APIKeyEnv: "DOCPRESS_TEST_SEARCH_KEY",
		IndexName: "docs",
	})

	require.NotNil(t, p)
	require.Equal(t, "docs", p.IndexName())
}
