package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrEmptyCorpus is returned when there are no documents to index
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrExtraction is returned when no text can be recovered from an uploaded file
	ErrExtraction = errors.New("text extraction failed")

	// ErrUnsupportedFileType is returned when the extractor does not handle a file type
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyQuery is returned when the query text is empty after trimming
	ErrEmptyQuery = errors.New("empty query")

	// ErrScoreComputation marks a signal that could not be computed for a document
	ErrScoreComputation = errors.New("score computation failed")

	// ErrInvalidSettings is returned when ranking settings fail validation
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when request validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// EmptyCorpusError carries the source that produced no documents.
type EmptyCorpusError struct {
	Source string
}

func (e *EmptyCorpusError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("corpus source '%s' returned no documents", e.Source)
	}
	return "corpus has no documents to index"
}

func (e *EmptyCorpusError) Is(target error) bool {
	return target == ErrEmptyCorpus
}

// NewEmptyCorpusError creates a new EmptyCorpusError
func NewEmptyCorpusError(source ...string) *EmptyCorpusError {
	err := &EmptyCorpusError{}
	if len(source) > 0 {
		err.Source = source[0]
	}
	return err
}

// ExtractionError is surfaced by text extractors when a file yields no usable text.
type ExtractionError struct {
	FileType string
	Reason   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract text from '%s' file: %s", e.FileType, e.Reason)
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// NewExtractionError creates a new ExtractionError
func NewExtractionError(fileType, reason string) *ExtractionError {
	return &ExtractionError{FileType: fileType, Reason: reason}
}

// UnsupportedFileTypeError reports a file type the extractor does not handle.
type UnsupportedFileTypeError struct {
	FileType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("file type '%s' is not supported", e.FileType)
}

// Is matches both ErrUnsupportedFileType and ErrExtraction: an unsupported
// file is one we cannot extract text from.
func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType || target == ErrExtraction
}

// NewUnsupportedFileTypeError creates a new UnsupportedFileTypeError
func NewUnsupportedFileTypeError(fileType string) *UnsupportedFileTypeError {
	return &UnsupportedFileTypeError{FileType: fileType}
}

// ScoreComputationError describes a single degraded signal for one document.
type ScoreComputationError struct {
	Signal     string
	DocumentID string
	Reason     string
}

func (e *ScoreComputationError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("signal '%s' failed for document '%s': %s", e.Signal, e.DocumentID, e.Reason)
	}
	return fmt.Sprintf("signal '%s' failed: %s", e.Signal, e.Reason)
}

func (e *ScoreComputationError) Is(target error) bool {
	return target == ErrScoreComputation
}

// NewScoreComputationError creates a new ScoreComputationError
func NewScoreComputationError(signal, documentID, reason string) *ScoreComputationError {
	return &ScoreComputationError{Signal: signal, DocumentID: documentID, Reason: reason}
}

// ValidationError represents a settings or input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSettings || target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}
