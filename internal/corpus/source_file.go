package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gcbaptista/jobmatch/internal/persistence"
	"github.com/gcbaptista/jobmatch/model"
)

// FileSource reads and writes postings as a gob file. A missing file is an empty corpus.
type FileSource struct {
	mu   sync.Mutex
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Path() string { return s.path }

func (s *FileSource) FetchAll(ctx context.Context) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Upsert merges docs into the file by id and rewrites it.
func (s *FileSource) Upsert(ctx context.Context, docs []model.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return 0, err
	}
	byID := make(map[string]model.Document, len(existing)+len(docs))
	for _, doc := range existing {
		byID[doc.ID] = doc
	}
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	if err := persistence.SaveGob(s.path, sortedDocuments(byID)); err != nil {
		return 0, fmt.Errorf("failed to save corpus: %w", err)
	}
	return len(docs), nil
}

func (s *FileSource) load() ([]model.Document, error) {
	var docs []model.Document
	if err := persistence.LoadGob(s.path, &docs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Document{}, nil
		}
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return docs, nil
}
