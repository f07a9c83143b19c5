package blogpodcast

import (
	"context"
	"sort"
	"sync"
)

// DocumentStore is the host's document query capability. Search must
// return exactly the documents the selector matches, in any order; Limit
// and Offset are applied by the plugin and may be ignored.
type DocumentStore interface {
	Search(ctx context.Context, sel Selector) ([]Document, error)
}

// MemoryStore keeps documents in memory, keyed by virtual path. The zero
// value is an empty store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore returns a store holding docs.
func NewMemoryStore(docs ...Document) *MemoryStore {
	s := &MemoryStore{docs: make(map[string]Document, len(docs))}
	for _, d := range docs {
		s.docs[d.VPath] = d
	}
	return s
}

// Put adds or replaces documents.
func (s *MemoryStore) Put(docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = make(map[string]Document, len(docs))
	}
	for _, d := range docs {
		s.docs[d.VPath] = d
	}
}

// Remove deletes a document by virtual path.
func (s *MemoryStore) Remove(vpath string) {
	s.mu.Lock()
	delete(s.docs, vpath)
	s.mu.Unlock()
}

// Search returns matching documents ordered by virtual path.
func (s *MemoryStore) Search(ctx context.Context, sel Selector) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, d := range s.docs {
		if sel.Match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VPath < out[j].VPath })
	return out, nil
}
