package entities

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingJobStatus represents the status of a pending vector write
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"    // Waiting for the reconciler
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing" // Claimed by a worker
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"  // Vector stored
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"     // Gave up after MaxAttempts
)

// DefaultEmbeddingJobMaxAttempts bounds reconciler retries per meeting
const DefaultEmbeddingJobMaxAttempts = 5

// EmbeddingJob records a meeting whose vector still has to be written
type EmbeddingJob struct {
	ID            uuid.UUID          `json:"id" gorm:"type:uuid;primary_key"`
	MeetingID     uuid.UUID          `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	Status        EmbeddingJobStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	Attempts      int                `json:"attempts" gorm:"type:integer;not null;default:0"`
	MaxAttempts   int                `json:"max_attempts" gorm:"type:integer;not null;default:5"`
	LastError     *string            `json:"last_error,omitempty" gorm:"type:text"`
	NextAttemptAt time.Time          `json:"next_attempt_at" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (EmbeddingJob) TableName() string {
	return "embedding_jobs"
}

// NewEmbeddingJob creates a pending job due immediately
func NewEmbeddingJob(meetingID uuid.UUID, reason string) *EmbeddingJob {
	now := time.Now()
	job := &EmbeddingJob{
		ID:            uuid.New(),
		MeetingID:     meetingID,
		Status:        EmbeddingJobStatusPending,
		MaxAttempts:   DefaultEmbeddingJobMaxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if reason != "" {
		job.LastError = &reason
	}
	return job
}

// IsExhausted reports whether one more failure makes the job terminal
func (j *EmbeddingJob) IsExhausted() bool {
	return j.Attempts+1 >= j.MaxAttempts
}
