package api

import (
	"encoding/base64"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/jobmatch/internal/search"
	"github.com/gcbaptista/jobmatch/services"
)

// RankRequestBody ranks postings for a resume given as text.
type RankRequestBody struct {
	ResumeText string   `json:"resume_text"`
	TopN       *int     `json:"top_n,omitempty"`
	MinScore   *float64 `json:"min_score,omitempty"`
}

// UploadRequestBody carries a base64-encoded resume file.
type UploadRequestBody struct {
	Content  string   `json:"content" binding:"required"`
	FileType string   `json:"file_type" binding:"required"`
	TopN     *int     `json:"top_n,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
}

// BatchRequestBody ranks several named resumes against one snapshot.
type BatchRequestBody struct {
	Queries  []search.NamedQuery `json:"queries" binding:"required,dive"`
	TopN     *int                `json:"top_n,omitempty"`
	MinScore *float64            `json:"min_score,omitempty"`
}

// RankHandler handles POST /api/jobs/recommendations.
func (api *API) RankHandler(c *gin.Context) {
	var body RankRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateRankRequest(body.ResumeText, body.TopN, body.MinScore); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	resp, err := api.engine.Rank(c.Request.Context(), services.RankRequest{
		Query:    body.ResumeText,
		TopN:     body.TopN,
		MinScore: body.MinScore,
	})
	if err != nil {
		api.sendEngineError(c, "ranking", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RankUploadHandler handles POST /api/jobs/recommendations/upload. It accepts either a
// multipart form with a "resume" file, or JSON with base64 content and a file type.
func (api *API) RankUploadHandler(c *gin.Context) {
	var req services.FileRankRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var ok bool
		if req, ok = api.bindMultipartResume(c); !ok {
			return
		}
	} else {
		var body UploadRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			SendInvalidJSONError(c, err)
			return
		}
		content, err := base64.StdEncoding.DecodeString(body.Content)
		if err != nil {
			result := &ValidationResult{Valid: true}
			result.AddError("content", "Content must be base64 encoded")
			SendValidationError(c, result)
			return
		}
		req = services.FileRankRequest{Content: content, FileType: body.FileType, TopN: body.TopN, MinScore: body.MinScore}
	}

	if result := ValidateUpload(req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	resp, err := api.engine.RankFile(c.Request.Context(), req)
	if err != nil {
		api.sendEngineError(c, "file ranking", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (api *API) bindMultipartResume(c *gin.Context) (services.FileRankRequest, bool) {
	var form struct {
		TopN     *int     `form:"top_n"`
		MinScore *float64 `form:"min_score"`
	}
	if err := c.ShouldBind(&form); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Invalid form fields: "+err.Error())
		return services.FileRankRequest{}, false
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "No resume file provided")
		return services.FileRankRequest{}, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		SendInternalError(c, "reading upload", err)
		return services.FileRankRequest{}, false
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, MaxResumeBytes+1))
	if err != nil {
		SendInternalError(c, "reading upload", err)
		return services.FileRankRequest{}, false
	}

	fileType := c.PostForm("file_type")
	if fileType == "" {
		fileType = filepath.Ext(fileHeader.Filename)
	}
	return services.FileRankRequest{Content: content, FileType: fileType, TopN: form.TopN, MinScore: form.MinScore}, true
}

// RankBatchHandler handles POST /api/jobs/recommendations/batch.
func (api *API) RankBatchHandler(c *gin.Context) {
	var body BatchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateBatchRequest(body); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	resp, err := api.engine.RankBatch(c.Request.Context(), services.BatchRankRequest{
		Queries:  body.Queries,
		TopN:     body.TopN,
		MinScore: body.MinScore,
	})
	if err != nil {
		api.sendEngineError(c, "batch ranking", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
