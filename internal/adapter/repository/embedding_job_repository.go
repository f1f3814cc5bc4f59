package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// EmbeddingJobRepository handles reconcile job data operations
type EmbeddingJobRepository struct {
	db *gorm.DB
}

// NewEmbeddingJobRepository creates a new embedding job repository
func NewEmbeddingJobRepository(db *gorm.DB) *EmbeddingJobRepository {
	return &EmbeddingJobRepository{db: db}
}

// Enqueue creates a pending job for the meeting. An existing job that is not
// already being processed is re-armed with a fresh attempt budget.
func (r *EmbeddingJobRepository) Enqueue(ctx context.Context, meetingID uuid.UUID, reason string) error {
	job := entities.NewEmbeddingJob(meetingID, reason)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "meeting_id"}},
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Neq{Column: clause.Column{Table: entities.EmbeddingJob{}.TableName(), Name: "status"}, Value: entities.EmbeddingJobStatusProcessing},
			}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":          entities.EmbeddingJobStatusPending,
				"attempts":        0,
				"last_error":      job.LastError,
				"next_attempt_at": job.NextAttemptAt,
				"updated_at":      job.UpdatedAt,
			}),
		}).
		Create(job).Error
}

// ClaimDue lists due pending jobs and claims each one. Jobs taken by another
// worker in between are skipped.
func (r *EmbeddingJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entities.EmbeddingJob, error) {
	due, err := r.listDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}

	claimed := make([]*entities.EmbeddingJob, 0, len(due))
	for _, job := range due {
		ok, err := r.claim(ctx, job.ID)
		if err != nil {
			return claimed, err
		}
		if !ok {
			continue
		}
		job.Status = entities.EmbeddingJobStatusProcessing
		claimed = append(claimed, job)
	}
	return claimed, nil
}

// listDue returns pending jobs whose next attempt is due, oldest first
func (r *EmbeddingJobRepository) listDue(ctx context.Context, now time.Time, limit int) ([]*entities.EmbeddingJob, error) {
	var jobs []*entities.EmbeddingJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", entities.EmbeddingJobStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// claim flips a pending job to processing. Only one worker can win.
func (r *EmbeddingJobRepository) claim(ctx context.Context, jobID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.EmbeddingJob{}).
		Where("id = ? AND status = ?", jobID, entities.EmbeddingJobStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.EmbeddingJobStatusProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkCompleted marks a job as completed
func (r *EmbeddingJobRepository) MarkCompleted(ctx context.Context, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.EmbeddingJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.EmbeddingJobStatusCompleted,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": nil,
			"updated_at": time.Now(),
		}).Error
}

// MarkAttemptFailed increments the attempt count and either reschedules the
// job or marks it failed once MaxAttempts is reached
func (r *EmbeddingJobRepository) MarkAttemptFailed(ctx context.Context, job *entities.EmbeddingJob, errMsg string, nextAttemptAt time.Time) error {
	status := entities.EmbeddingJobStatusPending
	if job.IsExhausted() {
		status = entities.EmbeddingJobStatusFailed
	}
	return r.db.WithContext(ctx).
		Model(&entities.EmbeddingJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      errMsg,
			"next_attempt_at": nextAttemptAt,
			"updated_at":      time.Now(),
		}).Error
}

// ResetStale returns processing jobs abandoned by a crashed worker to pending
func (r *EmbeddingJobRepository) ResetStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.EmbeddingJob{}).
		Where("status = ? AND updated_at < ?", entities.EmbeddingJobStatusProcessing, before).
		Updates(map[string]interface{}{
			"status":     entities.EmbeddingJobStatusPending,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// CountByStatus reports how many jobs are in the given status
func (r *EmbeddingJobRepository) CountByStatus(ctx context.Context, status entities.EmbeddingJobStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.EmbeddingJob{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
