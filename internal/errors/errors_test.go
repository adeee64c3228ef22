package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestEmptyCorpusError(t *testing.T) {
	err := NewEmptyCorpusError()

	expectedMsg := "corpus has no documents to index"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	withSource := NewEmptyCorpusError("sqlite")
	expectedMsg2 := "corpus source 'sqlite' returned no documents"
	if withSource.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, withSource.Error())
	}

	if !errors.Is(err, ErrEmptyCorpus) {
		t.Error("Expected error to match ErrEmptyCorpus sentinel")
	}
	if errors.Is(err, ErrExtraction) {
		t.Error("Error should not match ErrExtraction")
	}
}

func TestExtractionError(t *testing.T) {
	err := NewExtractionError("pdf", "no text layer")

	expectedMsg := "could not extract text from 'pdf' file: no text layer"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrExtraction) {
		t.Error("Expected error to match ErrExtraction sentinel")
	}
}

func TestUnsupportedFileTypeError(t *testing.T) {
	err := NewUnsupportedFileTypeError("docx")

	if err.Error() != "file type 'docx' is not supported" {
		t.Errorf("Unexpected error message '%s'", err.Error())
	}
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Error("Expected error to match ErrUnsupportedFileType sentinel")
	}
	if !errors.Is(err, ErrExtraction) {
		t.Error("Expected unsupported file type to count as an extraction failure")
	}
}

func TestScoreComputationError(t *testing.T) {
	err := NewScoreComputationError("cosine_similarity", "job-1", "NaN result")

	expectedMsg := "signal 'cosine_similarity' failed for document 'job-1': NaN result"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	noDoc := NewScoreComputationError("bm25_score", "", "zero self score")
	if noDoc.Error() != "signal 'bm25_score' failed: zero self score" {
		t.Errorf("Unexpected error message '%s'", noDoc.Error())
	}

	if !errors.Is(err, ErrScoreComputation) {
		t.Error("Expected error to match ErrScoreComputation sentinel")
	}
}

func TestJobNotFoundError(t *testing.T) {
	jobID := "job-456"
	err := NewJobNotFoundError(jobID)

	expectedMsg := "job with ID 'job-456' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrJobNotFound) {
		t.Error("Expected error to match ErrJobNotFound sentinel")
	}
}

func TestValidationError(t *testing.T) {
	field := "weights"
	message := "must sum to 1.0"
	err := NewValidationError(field, message)

	expectedMsg := "validation error for field 'weights': must sum to 1.0"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	err2 := NewValidationError("", message)

	expectedMsg2 := "validation error: must sum to 1.0"
	if err2.Error() != expectedMsg2 {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg2, err2.Error())
	}

	if !errors.Is(err, ErrInvalidSettings) {
		t.Error("Expected error to match ErrInvalidSettings sentinel")
	}
	if !errors.Is(err2, ErrInvalidInput) {
		t.Error("Expected error without field to match ErrInvalidInput sentinel")
	}
}

func TestErrorChaining(t *testing.T) {
	originalErr := NewEmptyCorpusError("postgres")
	wrappedErr := fmt.Errorf("failed to build snapshot: %w", originalErr)

	if !errors.Is(wrappedErr, ErrEmptyCorpus) {
		t.Error("Expected wrapped error to still match ErrEmptyCorpus sentinel")
	}

	var corpusErr *EmptyCorpusError
	if !errors.As(wrappedErr, &corpusErr) {
		t.Fatal("Expected to be able to unwrap to EmptyCorpusError")
	}

	if corpusErr.Source != "postgres" {
		t.Errorf("Expected source 'postgres', got '%s'", corpusErr.Source)
	}

	joined := errors.Join(NewExtractionError("html", "empty body"), errors.New("additional context"))
	if !errors.Is(joined, ErrExtraction) {
		t.Error("Expected joined error to match ErrExtraction sentinel")
	}
}
