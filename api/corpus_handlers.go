package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSnapshotHandler describes the current corpus snapshot.
func (api *API) GetSnapshotHandler(c *gin.Context) {
	info, err := api.engine.SnapshotInfo(c.Request.Context())
	if err != nil {
		api.sendEngineError(c, "snapshot build", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// RefreshSnapshotHandler starts a snapshot rebuild and returns its job id.
func (api *API) RefreshSnapshotHandler(c *gin.Context) {
	jobID, err := api.engine.RefreshAsync()
	if err != nil {
		SendJobExecutionError(c, "snapshot rebuild", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Snapshot rebuild started",
		"job_id":  jobID,
	})
}

// InvalidateSnapshotHandler marks the snapshot stale; the next request rebuilds it.
func (api *API) InvalidateSnapshotHandler(c *gin.Context) {
	api.engine.Invalidate()
	c.JSON(http.StatusOK, gin.H{"message": "Snapshot marked stale"})
}

// ImportDocumentsHandler stores postings and rebuilds the snapshot in a background job.
// The body is a single posting or an array of postings.
func (api *API) ImportDocumentsHandler(c *gin.Context) {
	docs, result := BindDocuments(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.ImportAsync(docs)
	if err != nil {
		api.sendEngineError(c, "corpus import", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":         "accepted",
		"message":        fmt.Sprintf("Import of %d document(s) started", len(docs)),
		"job_id":         jobID,
		"document_count": len(docs),
	})
}
