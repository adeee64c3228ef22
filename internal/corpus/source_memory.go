package corpus

import (
	"context"
	"sort"
	"sync"

	"github.com/gcbaptista/jobmatch/model"
)

// MemorySource keeps postings in process memory. It serves tests and one-shot CLI runs.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

func NewMemorySource(docs ...model.Document) *MemorySource {
	s := &MemorySource{docs: make(map[string]model.Document, len(docs))}
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
	return s
}

// FetchAll returns the postings ordered by id.
func (s *MemorySource) FetchAll(ctx context.Context) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedDocuments(s.docs), nil
}

func (s *MemorySource) Upsert(ctx context.Context, docs []model.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.docs[doc.ID] = doc
	}
	return len(docs), nil
}

func sortedDocuments(byID map[string]model.Document) []model.Document {
	out := make([]model.Document, 0, len(byID))
	for _, doc := range byID {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
