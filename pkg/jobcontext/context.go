package jobcontext

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-notes/errors"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyAttempt      KeyContext = "attempt"
	keyMaxAttempts  KeyContext = "max_attempts"
	keyJobStartTime KeyContext = "job_start_time"
)

// DefaultTimeout bounds a single job execution
const DefaultTimeout = 2 * time.Minute

// MaxBackoff caps the delay between rescheduled attempts
const MaxBackoff = time.Hour

// JobMetadata holds metadata for a job execution
type JobMetadata struct {
	JobID       uuid.UUID
	JobType     string
	Attempt     int
	MaxAttempts int
	StartTime   time.Time
}

// JobBegin derives a job context carrying metadata and a timeout
func JobBegin(parentCtx context.Context, meta JobMetadata, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Create context with timeout to prevent infinite hanging
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	if meta.StartTime.IsZero() {
		meta.StartTime = time.Now()
	}
	ctx = context.WithValue(ctx, keyJobID, meta.JobID)
	ctx = context.WithValue(ctx, keyJobType, meta.JobType)
	ctx = context.WithValue(ctx, keyAttempt, meta.Attempt)
	ctx = context.WithValue(ctx, keyMaxAttempts, meta.MaxAttempts)
	ctx = context.WithValue(ctx, keyJobStartTime, meta.StartTime)

	return ctx, cancel
}

// JobEnd runs jobFunc once inside the job context. A panic is turned into an
// error so one bad job cannot take the worker down.
func JobEnd(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	return jobFunc(ctx)
}

// GetJobMetadata extracts the metadata JobBegin stored in ctx. Missing values
// are left zero.
func GetJobMetadata(ctx context.Context) JobMetadata {
	var meta JobMetadata
	meta.JobID, _ = ctx.Value(keyJobID).(uuid.UUID)
	meta.JobType, _ = ctx.Value(keyJobType).(string)
	meta.Attempt, _ = ctx.Value(keyAttempt).(int)
	meta.MaxAttempts, _ = ctx.Value(keyMaxAttempts).(int)
	meta.StartTime, _ = ctx.Value(keyJobStartTime).(time.Time)
	return meta
}

// IsRetryableError checks if an error should trigger an in-place retry.
// Retryable errors include: network errors, timeouts, rate limits, 5xx.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrorCode_INVALID_ARGUMENT, errors.ErrorCode_INVALID_PAYLOAD, errors.ErrorCode_NOT_FOUND:
			return false
		}
		if appErr.Raw == nil {
			return appErr.HTTPCode >= 500
		}
		err = appErr.Raw
	}

	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "server selection error") {
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "status 429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// CalculateBackoff calculates the exponential delay before the next attempt
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 20 {
		return MaxBackoff
	}

	// 2^attempt * baseDelay, capped at MaxBackoff
	backoff := time.Duration(1<<uint(attempt)) * baseDelay
	if backoff > MaxBackoff {
		backoff = MaxBackoff
	}

	return backoff
}
