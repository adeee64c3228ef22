package model

import "time"

// RankEvent records one ranking request for analytics tracking
type RankEvent struct {
	QueryID         string        `json:"query_id"`
	Source          string        `json:"source"` // "text", "file" or "batch"
	SnapshotVersion uint64        `json:"snapshot_version"`
	ResultCount     int           `json:"result_count"`
	TopScore        float64       `json:"top_score"`
	TopDocumentID   string        `json:"top_document_id,omitempty"`
	ResponseTime    time.Duration `json:"response_time"`
	Timestamp       time.Time     `json:"timestamp"`
}

// PopularDocument counts how often a posting ranked first.
type PopularDocument struct {
	DocumentID string `json:"document_id"`
	TopCount   int    `json:"top_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To25ms     int     `json:"bucket_0_25ms"`
	Bucket25To50ms    int     `json:"bucket_25_50ms"`
	Bucket50To100ms   int     `json:"bucket_50_100ms"`
	Bucket100msPlus   int     `json:"bucket_100ms_plus"`
	Percentage0To25   float64 `json:"percentage_0_25"`
	Percentage25To50  float64 `json:"percentage_25_50"`
	Percentage50To100 float64 `json:"percentage_50_100"`
	Percentage100Plus float64 `json:"percentage_100_plus"`
}

// RankSourceStats counts requests per input kind.
type RankSourceStats struct {
	Text  int `json:"text"`
	File  int `json:"file"`
	Batch int `json:"batch"`
}

// AnalyticsSummary represents the aggregated ranking analytics
type AnalyticsSummary struct {
	TotalRequests            int                      `json:"total_requests"`
	ZeroResultRequests       int                      `json:"zero_result_requests"`
	ZeroResultRate           float64                  `json:"zero_result_rate"`
	AvgResponseTime          float64                  `json:"avg_response_time_ms"`
	AvgTopScore              float64                  `json:"avg_top_score"`
	PopularDocuments         []PopularDocument        `json:"popular_documents"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
	Sources                  RankSourceStats          `json:"sources"`
	LastSnapshotVersion      uint64                   `json:"last_snapshot_version"`
}
