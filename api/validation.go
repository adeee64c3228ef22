package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/gcbaptista/jobmatch/model"
	"github.com/gcbaptista/jobmatch/services"
)

const maxTopN = 100

var documentValidator = validator.New()

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

func validateLimits(result *ValidationResult, topN *int, minScore *float64) {
	if topN != nil && (*topN < 0 || *topN > maxTopN) {
		result.AddError("top_n", fmt.Sprintf("Must be between 0 and %d", maxTopN))
	}
	if minScore != nil && (math.IsNaN(*minScore) || *minScore < 0 || *minScore > 1) {
		result.AddError("min_score", "Must be between 0 and 1")
	}
}

// ValidateRankRequest checks the resume text and optional limits.
func ValidateRankRequest(resumeText string, topN *int, minScore *float64) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if strings.TrimSpace(resumeText) == "" {
		result.AddError("resume_text", "Resume text is required")
	}
	validateLimits(result, topN, minScore)
	return result
}

// ValidateUpload checks an uploaded resume before extraction.
func ValidateUpload(req services.FileRankRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}
	switch {
	case len(req.Content) == 0:
		result.AddError("content", "Resume file is empty")
	case len(req.Content) > MaxResumeBytes:
		result.AddError("content", fmt.Sprintf("Resume file exceeds %d bytes", MaxResumeBytes))
	}
	if strings.TrimSpace(req.FileType) == "" {
		result.AddError("file_type", "File type is required")
	}
	validateLimits(result, req.TopN, req.MinScore)
	return result
}

// ValidateBatchRequest checks query count, names and limits.
func ValidateBatchRequest(body BatchRequestBody) *ValidationResult {
	result := &ValidationResult{Valid: true}
	switch {
	case len(body.Queries) == 0:
		result.AddError("queries", "At least one query is required")
	case len(body.Queries) > MaxBatchQueries:
		result.AddError("queries", fmt.Sprintf("At most %d queries per batch", MaxBatchQueries))
	}
	seen := make(map[string]struct{}, len(body.Queries))
	for i, q := range body.Queries {
		if strings.TrimSpace(q.Name) == "" {
			result.AddError(fmt.Sprintf("queries[%d].name", i), "Query name is required")
			continue
		}
		if _, dup := seen[q.Name]; dup {
			result.AddError(fmt.Sprintf("queries[%d].name", i), "Duplicate query name '"+q.Name+"'")
		}
		seen[q.Name] = struct{}{}
		if strings.TrimSpace(q.Text) == "" {
			result.AddError(fmt.Sprintf("queries[%d].text", i), "Query text is required")
		}
	}
	validateLimits(result, body.TopN, body.MinScore)
	return result
}

// BindDocuments reads a posting or an array of postings from the request body and validates them.
func BindDocuments(c *gin.Context) ([]model.Document, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		result.AddError("request_body", "Failed to read request body: "+err.Error())
		return nil, result
	}
	raw = bytes.TrimSpace(raw)

	var docs []model.Document
	switch {
	case len(raw) == 0:
		result.AddError("request_body", "Request body is empty")
		return nil, result
	case raw[0] == '[':
		err = json.Unmarshal(raw, &docs)
	case raw[0] == '{':
		var doc model.Document
		err = json.Unmarshal(raw, &doc)
		docs = []model.Document{doc}
	default:
		err = errors.New("expecting a document object or an array of documents")
	}
	if err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
		return nil, result
	}

	return docs, ValidateDocuments(docs)
}

// ValidateDocuments checks required fields and id uniqueness.
func ValidateDocuments(docs []model.Document) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if len(docs) == 0 {
		result.AddError("documents", "No documents provided")
		return result
	}

	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		if err := documentValidator.Struct(doc); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					result.AddError(fmt.Sprintf("documents[%d].%s", i, strings.ToLower(fe.Field())), fmt.Sprintf("Failed '%s' constraint", fe.Tag()))
				}
			}
			continue
		}
		if strings.TrimSpace(doc.ID) != doc.ID {
			result.AddError(fmt.Sprintf("documents[%d].id", i), "Document ID cannot have leading or trailing whitespace")
		}
		if _, dup := seen[doc.ID]; dup {
			result.AddError(fmt.Sprintf("documents[%d].id", i), "Duplicate document ID '"+doc.ID+"'")
		}
		seen[doc.ID] = struct{}{}
	}
	return result
}
