package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrorCodeJobNotFound         ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON         ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery        ErrorCode = "INVALID_QUERY"
	ErrorCodeExtractionFailed    ErrorCode = "EXTRACTION_FAILED"
	ErrorCodeUnsupportedFileType ErrorCode = "UNSUPPORTED_FILE_TYPE"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeCorpusUnavailable  ErrorCode = "CORPUS_UNAVAILABLE"
	ErrorCodeRequestCancelled   ErrorCode = "REQUEST_CANCELLED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}
	c.JSON(statusCode, errorResponse)
}

// SendValidationError sends a 400 listing every failed field.
func SendValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendJobExecutionError sends a standardized job execution error
func SendJobExecutionError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeJobExecutionFailed,
		"Failed to start "+operation+" job: "+err.Error())
}

// sendEngineError maps an engine error onto a status code and error code.
func (api *API) sendEngineError(c *gin.Context, operation string, err error) {
	var validationErr *internalErrors.ValidationError
	switch {
	case errors.Is(err, internalErrors.ErrEmptyQuery):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Resume text is empty")
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed",
			ErrorDetail{Field: validationErr.Field, Message: validationErr.Message, Code: "VALIDATION_ERROR"})
	case errors.Is(err, internalErrors.ErrUnsupportedFileType):
		SendError(c, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedFileType, err.Error())
	case errors.Is(err, internalErrors.ErrExtraction):
		SendError(c, http.StatusUnprocessableEntity, ErrorCodeExtractionFailed, err.Error())
	case errors.Is(err, internalErrors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case errors.Is(err, internalErrors.ErrEmptyCorpus):
		SendError(c, http.StatusServiceUnavailable, ErrorCodeCorpusUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		SendError(c, http.StatusServiceUnavailable, ErrorCodeRequestCancelled, "Request cancelled during "+operation)
	default:
		api.logger.Error("Request failed", zap.String("operation", operation), zap.Error(err))
		SendInternalError(c, operation, err)
	}
}
