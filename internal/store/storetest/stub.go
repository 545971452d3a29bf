// Package storetest provides a deterministic in-memory content store for
// resolver, metadata and build tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/docpress/docpress/internal/store"
	serrors "github.com/docpress/docpress/internal/store/errors"
)

// StubStore serves pre-seeded listing pages linked by synthetic cursors and
// individual records by path. The zero value is an empty store.
type StubStore struct {
	mu sync.Mutex

	pages []store.Page
	docs  map[string]*store.ContentRecord

	// FailAtPage makes the Nth ListDocuments call (1-based) fail.
	FailAtPage int
	// AlwaysHasNext forces every returned page to claim another page,
	// simulating a store with broken cursor bookkeeping.
	AlwaysHasNext bool

	listCalls int
	getCalls  int
}

var _ store.Client = (*StubStore)(nil)

// New creates an empty stub store.
func New() *StubStore {
	return &StubStore{docs: make(map[string]*store.ContentRecord)}
}

// SeedPages splits records into pages of the given sizes, wiring cursors
// between them. A final page of size 0 is never produced; sizes must sum to
// len(records).
func (s *StubStore) SeedPages(records []store.ContentRecord, sizes ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = nil
	offset := 0
	for i, size := range sizes {
		page := store.Page{Edges: records[offset : offset+size]}
		if i < len(sizes)-1 {
			page.PageInfo = store.PageInfo{HasNextPage: true, EndCursor: cursorFor(i + 1)}
		}
		s.pages = append(s.pages, page)
		offset += size
	}
	if offset != len(records) {
		panic(fmt.Sprintf("storetest: page sizes cover %d of %d records", offset, len(records)))
	}
}

// SeedDocs registers records for GetDocument lookups keyed by storage path.
func (s *StubStore) SeedDocs(records ...store.ContentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs == nil {
		s.docs = make(map[string]*store.ContentRecord)
	}
	for i := range records {
		rec := records[i]
		s.docs[rec.StoragePath] = &rec
	}
}

// ListDocuments serves the seeded pages in cursor order.
func (s *StubStore) ListDocuments(_ context.Context, cursor string) (*store.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	if s.FailAtPage > 0 && s.listCalls == s.FailAtPage {
		return nil, fmt.Errorf("stub store: injected failure on page %d", s.listCalls)
	}

	idx := 0
	if cursor != "" {
		n, err := cursorIndex(cursor)
		if err != nil {
			return nil, err
		}
		idx = n
	}
	if idx >= len(s.pages) {
		if s.AlwaysHasNext {
			// Keep claiming more pages with fresh cursors and no edges.
			return &store.Page{PageInfo: store.PageInfo{HasNextPage: true, EndCursor: cursorFor(idx + 1)}}, nil
		}
		return &store.Page{}, nil
	}

	page := s.pages[idx]
	if s.AlwaysHasNext {
		page.PageInfo = store.PageInfo{HasNextPage: true, EndCursor: cursorFor(idx + 1)}
	}
	return &page, nil
}

// GetDocument serves seeded records by storage path.
func (s *StubStore) GetDocument(_ context.Context, relPath string) (*store.ContentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if rec, ok := s.docs[relPath]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, fmt.Errorf("%w: %s", serrors.ErrDocumentNotFound, relPath)
}

// ListCalls reports how many listing requests the store has served.
func (s *StubStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// GetCalls reports how many single-document requests the store has served.
func (s *StubStore) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

func cursorFor(pageIdx int) string {
	return fmt.Sprintf("cursor-%d", pageIdx)
}

func cursorIndex(cursor string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(cursor, "cursor-%d", &n); err != nil || !strings.HasPrefix(cursor, "cursor-") {
		return 0, fmt.Errorf("stub store: unknown cursor %q", cursor)
	}
	return n, nil
}
