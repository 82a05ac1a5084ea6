package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PostingFetcher retrieves the plain text of a job posting page
type PostingFetcher interface {
	FetchPosting(ctx context.Context, url string) (string, error)
}

// ChartRenderer draws the matched/missing bar chart as PNG bytes
type ChartRenderer interface {
	RenderChart(result MatchResult) ([]byte, error)
}

// Download name and MIME type of the PDF report
const (
	ReportFilename    = "resume_match_report.pdf"
	ReportContentType = "application/pdf"
)

// ReportRenderer composes the downloadable PDF report
type ReportRenderer interface {
	RenderReport(result MatchResult, chartPNG []byte) ([]byte, error)
}

// AnalysisObserver is notified after every completed analysis
type AnalysisObserver interface {
	ObserveAnalysis(targetKind string, result MatchResult)
}

// DocumentExtractor turns an uploaded resume file into raw text
type DocumentExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}
