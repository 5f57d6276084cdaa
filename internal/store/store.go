// Package store persists analysis run records and video generation jobs.
//
// The package uses a single-table DynamoDB design: analysis runs live
// under partition key RUN#{runId} and generation jobs under GEN#{genId},
// both with sort key META. A TTL attribute (expiresAt) auto-deletes
// records after 30 days. The full AnalysisResult payload is too large
// for a DynamoDB item, so it is archived gzipped to S3 and the record
// carries only its key plus a small summary projection.
package store

import (
	"context"
	"time"
)

// RecordTTL is the time-to-live for all DynamoDB records.
const RecordTTL = 30 * 24 * time.Hour

// Run and generation statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// RunRecord is the persisted state of one analysis run. The heavy
// payload lives in S3 (ArchiveKey); the record keeps only what list and
// status endpoints need.
type RunRecord struct {
	RunID     string `dynamodbav:"-"`
	SourceRef string `dynamodbav:"sourceRef"`
	Status    string `dynamodbav:"status"`
	Error     string `dynamodbav:"error,omitempty"`

	// ArchiveKey is the S3 key of the gzipped AnalysisResult JSON,
	// empty until the run completes.
	ArchiveKey string `dynamodbav:"archiveKey,omitempty"`

	// Summary projection of the result for listings.
	Duration     float64 `dynamodbav:"duration,omitempty"`
	VideoType    string  `dynamodbav:"videoType,omitempty"`
	HookType     string  `dynamodbav:"hookType,omitempty"`
	HookStrength string  `dynamodbav:"hookStrength,omitempty"`

	CreatedAt int64 `dynamodbav:"createdAt"`
	UpdatedAt int64 `dynamodbav:"updatedAt"`
}

// GenerationJob is the persisted state of one downstream video
// generation request.
type GenerationJob struct {
	ID          string `dynamodbav:"-"`
	RunID       string `dynamodbav:"runId,omitempty"`
	Prompt      string `dynamodbav:"prompt"`
	Model       string `dynamodbav:"model"`
	AspectRatio string `dynamodbav:"aspectRatio"`
	Duration    int    `dynamodbav:"duration"`
	Status      string `dynamodbav:"status"`
	VideoURL    string `dynamodbav:"videoUrl,omitempty"`
	Error       string `dynamodbav:"error,omitempty"`
	CreatedAt   int64  `dynamodbav:"createdAt"`
	UpdatedAt   int64  `dynamodbav:"updatedAt"`
}

// RunStore defines the persistence interface. Each method is safe for
// concurrent use. Get methods return (nil, nil) when the record does
// not exist; Put methods perform full-item replacement.
type RunStore interface {
	// PutRun creates or replaces a run record.
	PutRun(ctx context.Context, run *RunRecord) error

	// GetRun retrieves a run record by ID. Returns nil, nil if not found.
	GetRun(ctx context.Context, runID string) (*RunRecord, error)

	// UpdateRunStatus atomically updates the status and error fields
	// without overwriting the rest of the record.
	UpdateRunStatus(ctx context.Context, runID, status, errMsg string) error

	// PutGeneration creates or replaces a generation job record.
	PutGeneration(ctx context.Context, job *GenerationJob) error

	// GetGeneration retrieves a generation job. Returns nil, nil if not found.
	GetGeneration(ctx context.Context, id string) (*GenerationJob, error)

	// UpdateGenerationStatus atomically updates status, video URL, and
	// error of a generation job.
	UpdateGenerationStatus(ctx context.Context, id, status, videoURL, errMsg string) error
}
