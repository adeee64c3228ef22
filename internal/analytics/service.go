// Package analytics aggregates ranking requests into usage statistics.
package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/jobmatch/model"
)

const (
	maxEventsToKeep    = 10000
	popularDocumentsTo = 5
)

// Service records ranking events in memory, keeping the most recent ones.
type Service struct {
	mutex     sync.RWMutex
	events    []model.RankEvent
	maxEvents int
	now       func() time.Time
}

func NewService() *Service {
	return &Service{
		events:    make([]model.RankEvent, 0),
		maxEvents: maxEventsToKeep,
		now:       time.Now,
	}
}

// TrackRankEvent stores event, stamping it with the current time when it has none.
func (s *Service) TrackRankEvent(event model.RankEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// Analytics summarizes every retained event.
func (s *Service) Analytics() model.AnalyticsSummary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return summarize(s.events)
}

// AnalyticsSince summarizes the events recorded after since.
func (s *Service) AnalyticsSince(since time.Time) model.AnalyticsSummary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var recent []model.RankEvent
	for _, event := range s.events {
		if event.Timestamp.After(since) {
			recent = append(recent, event)
		}
	}
	return summarize(recent)
}

func summarize(events []model.RankEvent) model.AnalyticsSummary {
	summary := model.AnalyticsSummary{
		TotalRequests:    len(events),
		PopularDocuments: []model.PopularDocument{},
	}
	if len(events) == 0 {
		return summary
	}

	var (
		totalTime     time.Duration
		topScoreSum   float64
		withResults   int
		topDocCounts  = make(map[string]int)
		latestVersion uint64
	)
	for _, event := range events {
		totalTime += event.ResponseTime
		if event.ResultCount == 0 {
			summary.ZeroResultRequests++
		} else {
			withResults++
			topScoreSum += event.TopScore
		}
		if event.TopDocumentID != "" {
			topDocCounts[event.TopDocumentID]++
		}
		if event.SnapshotVersion > latestVersion {
			latestVersion = event.SnapshotVersion
		}
		switch event.Source {
		case "text":
			summary.Sources.Text++
		case "file":
			summary.Sources.File++
		case "batch":
			summary.Sources.Batch++
		}
	}

	summary.ZeroResultRate = float64(summary.ZeroResultRequests) / float64(len(events))
	summary.AvgResponseTime = float64((totalTime / time.Duration(len(events))).Microseconds()) / 1000
	if withResults > 0 {
		summary.AvgTopScore = topScoreSum / float64(withResults)
	}
	summary.PopularDocuments = popularDocuments(topDocCounts)
	summary.ResponseTimeDistribution = responseTimeDistribution(events)
	summary.LastSnapshotVersion = latestVersion
	return summary
}

// popularDocuments returns the postings that ranked first most often, ties by id.
func popularDocuments(counts map[string]int) []model.PopularDocument {
	popular := make([]model.PopularDocument, 0, len(counts))
	for id, count := range counts {
		popular = append(popular, model.PopularDocument{DocumentID: id, TopCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].TopCount != popular[j].TopCount {
			return popular[i].TopCount > popular[j].TopCount
		}
		return popular[i].DocumentID < popular[j].DocumentID
	})
	if len(popular) > popularDocumentsTo {
		popular = popular[:popularDocumentsTo]
	}
	return popular
}

func responseTimeDistribution(events []model.RankEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	for _, event := range events {
		ms := event.ResponseTime.Milliseconds()
		switch {
		case ms <= 25:
			dist.Bucket0To25ms++
		case ms <= 50:
			dist.Bucket25To50ms++
		case ms <= 100:
			dist.Bucket50To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	total := float64(len(events))
	dist.Percentage0To25 = float64(dist.Bucket0To25ms) / total * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50ms) / total * 100
	dist.Percentage50To100 = float64(dist.Bucket50To100ms) / total * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / total * 100
	return dist
}
