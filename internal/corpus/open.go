package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/gcbaptista/jobmatch/config"
	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
	"github.com/gcbaptista/jobmatch/model"
	"github.com/gcbaptista/jobmatch/services"
)

// Open returns the source configured by settings and a function that releases it.
// PostgreSQL sources are read-only and come back without a writer.
func Open(ctx context.Context, settings config.CorpusSettings) (services.CorpusSource, services.CorpusWriter, func() error, error) {
	noop := func() error { return nil }
	table := settings.Table
	if table == "" {
		table = "jobs"
	}

	switch settings.Source {
	case config.SourceMemory:
		s := NewMemorySource()
		return s, s, noop, nil
	case config.SourceFile:
		s := NewFileSource(settings.Path)
		return s, s, noop, nil
	case config.SourceSQLite:
		s, err := NewSQLiteSource(settings.Path, table)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	case config.SourcePostgres:
		s, err := NewPostgresSource(ctx, settings.DSN, table)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, nil, func() error { s.Close(); return nil }, nil
	default:
		return nil, nil, nil, internalErrors.NewValidationError("corpus.source", fmt.Sprintf("unknown source '%s'", settings.Source))
	}
}

// DecodeDocuments reads a JSON array of postings and validates each one.
func DecodeDocuments(r io.Reader) ([]model.Document, error) {
	var docs []model.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, internalErrors.NewValidationError("documents", fmt.Sprintf("invalid JSON: %v", err))
	}
	validate := validator.New()
	for i := range docs {
		if err := validate.Struct(docs[i]); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				return nil, internalErrors.NewValidationError(
					fmt.Sprintf("documents[%d].%s", i, fieldErrs[0].Field()),
					fmt.Sprintf("failed '%s' constraint", fieldErrs[0].Tag()))
			}
			return nil, internalErrors.NewValidationError(fmt.Sprintf("documents[%d]", i), err.Error())
		}
	}
	return docs, nil
}

// LoadDocumentsFile reads a JSON file of postings.
func LoadDocumentsFile(path string) ([]model.Document, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeDocuments(f)
}
