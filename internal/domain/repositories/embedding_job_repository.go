package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// EmbeddingJobRepository persists pending vector writes for the reconciler
type EmbeddingJobRepository interface {
	// Enqueue creates a pending job or re-arms the existing one for the meeting
	Enqueue(ctx context.Context, meetingID uuid.UUID, reason string) error

	// ClaimDue moves up to limit due pending jobs to processing and returns
	// the ones this caller won
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entities.EmbeddingJob, error)

	// MarkCompleted marks the job done
	MarkCompleted(ctx context.Context, jobID uuid.UUID) error

	// MarkAttemptFailed records a failed attempt. The job goes back to pending
	// at nextAttemptAt, or to failed when its attempts are exhausted.
	MarkAttemptFailed(ctx context.Context, job *entities.EmbeddingJob, errMsg string, nextAttemptAt time.Time) error

	// ResetStale returns processing jobs untouched since before to pending
	ResetStale(ctx context.Context, before time.Time) (int64, error)

	// CountByStatus reports how many jobs are in the given status
	CountByStatus(ctx context.Context, status entities.EmbeddingJobStatus) (int64, error)
}
