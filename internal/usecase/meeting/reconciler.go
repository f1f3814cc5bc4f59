package meeting

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-notes/pkg/jobcontext"
	"github.com/johnquangdev/meeting-notes/pkg/metrics"
)

const (
	jobTypeEmbedding = "embedding"
	// sweepGrace skips meetings whose inline vector write may still be running
	sweepGrace = time.Minute
)

// Embedder computes the vector of a text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ReconcilerConfig drives the embedding reconciler
type ReconcilerConfig struct {
	Interval             time.Duration
	SweepInterval        time.Duration
	SweepWindow          time.Duration
	// SweepLimit caps how many recent meetings one sweep inspects
	SweepLimit           int
	BatchSize            int
	JobTimeout           time.Duration
	RetryInitialInterval time.Duration
	RetryMaxElapsed      time.Duration
	// RescheduleBaseDelay is the delay after the first failed attempt; it
	// doubles with every further attempt
	RescheduleBaseDelay  time.Duration
}

func (c *ReconcilerConfig) setDefaults() {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 10 * time.Minute
	}
	if c.SweepWindow <= 0 {
		c.SweepWindow = 24 * time.Hour
	}
	if c.SweepLimit <= 0 {
		c.SweepLimit = 1000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = jobcontext.DefaultTimeout
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = 500 * time.Millisecond
	}
	if c.RetryMaxElapsed <= 0 {
		c.RetryMaxElapsed = 30 * time.Second
	}
	if c.RescheduleBaseDelay <= 0 {
		c.RescheduleBaseDelay = 30 * time.Second
	}
}

// Reconciler writes the vectors that the request path could not. Jobs are
// processed at least once; the vector store upserts by meeting ID so repeats
// are harmless.
type Reconciler struct {
	meetings repositories.MeetingRepository
	vectors  repositories.VectorRepository
	jobs     repositories.EmbeddingJobRepository
	embedder Embedder
	cfg      ReconcilerConfig
	logger   *zap.Logger
	now      func() time.Time

	stopChan  chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconciler creates a reconciler; call Start to run it in the background
func NewReconciler(
	meetings repositories.MeetingRepository,
	vectors repositories.VectorRepository,
	jobs repositories.EmbeddingJobRepository,
	embedder Embedder,
	cfg ReconcilerConfig,
	logger *zap.Logger,
) *Reconciler {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		meetings: meetings,
		vectors:  vectors,
		jobs:     jobs,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the job poller and the orphan sweep
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("reconciler already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.stopChan = make(chan struct{})
	r.isRunning = true

	r.wg.Add(2)
	go r.loop(ctx, "poll", r.cfg.Interval, false, func(ctx context.Context) {
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("reconcile poll failed", zap.Error(err))
		}
	})
	go r.loop(ctx, "sweep", r.cfg.SweepInterval, true, func(ctx context.Context) {
		if _, err := r.SweepOnce(ctx); err != nil {
			r.logger.Error("orphan sweep failed", zap.Error(err))
		}
	})

	r.logger.Info("embedding reconciler started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("sweep_interval", r.cfg.SweepInterval),
		zap.Int("batch_size", r.cfg.BatchSize),
	)
	return nil
}

// Stop signals both loops and waits for in-flight work to finish
func (r *Reconciler) Stop() error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("reconciler not running")
	}
	close(r.stopChan)
	r.cancel()
	r.isRunning = false
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("embedding reconciler stopped")
	return nil
}

func (r *Reconciler) loop(ctx context.Context, name string, every time.Duration, immediate bool, fn func(context.Context)) {
	defer r.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	if immediate {
		fn(ctx)
	}
	for {
		select {
		case <-r.stopChan:
			r.logger.Debug("reconciler loop exiting", zap.String("loop", name))
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// RunOnce claims due jobs and processes them one by one. It returns how many
// jobs completed.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	now := r.now()

	// jobs stuck in processing belong to a worker that died mid-flight
	if n, err := r.jobs.ResetStale(ctx, now.Add(-2*r.cfg.JobTimeout)); err != nil {
		r.logger.Warn("failed to reset stale embedding jobs", zap.Error(err))
	} else if n > 0 {
		r.logger.Info("reset stale embedding jobs", zap.Int64("count", n))
	}

	claimed, err := r.jobs.ClaimDue(ctx, now, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim embedding jobs: %w", err)
	}

	completed := 0
	for _, job := range claimed {
		if ctx.Err() != nil {
			break
		}
		if r.process(ctx, job) {
			completed++
		}
	}

	if pending, err := r.jobs.CountByStatus(ctx, entities.EmbeddingJobStatusPending); err == nil {
		metrics.EmbeddingJobsPending.Set(float64(pending))
	}
	return completed, nil
}

// process runs one job inside a job context and records its outcome
func (r *Reconciler) process(ctx context.Context, job *entities.EmbeddingJob) bool {
	jobCtx, cancel := jobcontext.JobBegin(ctx, jobcontext.JobMetadata{
		JobID:       job.ID,
		JobType:     jobTypeEmbedding,
		Attempt:     job.Attempts,
		MaxAttempts: job.MaxAttempts,
		StartTime:   r.now(),
	}, r.cfg.JobTimeout)
	defer cancel()

	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		return r.reconcile(ctx, job)
	})

	logger := r.jobLogger(jobCtx).With(zap.String("meeting_id", job.MeetingID.String()))

	// use the parent context so a job timeout can still be recorded
	if err == nil {
		if markErr := r.jobs.MarkCompleted(ctx, job.ID); markErr != nil {
			logger.Error("failed to mark embedding job completed", zap.Error(markErr))
		}
		metrics.ReconcileJobs.WithLabelValues("completed").Inc()
		logger.Info("meeting vector reconciled")
		return true
	}

	next := r.now().Add(jobcontext.CalculateBackoff(job.Attempts, r.cfg.RescheduleBaseDelay))
	if markErr := r.jobs.MarkAttemptFailed(ctx, job, err.Error(), next); markErr != nil {
		logger.Error("failed to record embedding job failure", zap.Error(markErr))
	}
	if job.IsExhausted() {
		metrics.ReconcileJobs.WithLabelValues("failed").Inc()
		logger.Error("embedding job gave up", zap.Error(err))
	} else {
		metrics.ReconcileJobs.WithLabelValues("retry").Inc()
		logger.Warn("embedding job failed, rescheduled", zap.Time("next_attempt_at", next), zap.Error(err))
	}
	return false
}

// reconcile re-derives the embedding from the stored meeting and writes it,
// retrying transient failures with exponential backoff
func (r *Reconciler) reconcile(ctx context.Context, job *entities.EmbeddingJob) error {
	meeting, err := r.meetings.FindByID(ctx, job.MeetingID)
	if err != nil {
		return fmt.Errorf("load meeting: %w", err)
	}

	var embedding []float32
	operation := func() error {
		if len(embedding) == 0 {
			v, err := r.embedder.Embed(ctx, meeting.EmbeddingText())
			if err != nil {
				return classify(err)
			}
			embedding = v
		}
		return classify(r.vectors.Store(ctx, entities.NewMeetingVector(meeting, embedding)))
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.RetryInitialInterval
	bo.MaxElapsedTime = r.cfg.RetryMaxElapsed
	notify := func(err error, wait time.Duration) {
		r.jobLogger(ctx).Debug("vector write failed, retrying", zap.Duration("wait", wait), zap.Error(err))
	}
	return backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify)
}

// jobLogger tags log lines with the job metadata carried by ctx
func (r *Reconciler) jobLogger(ctx context.Context) *zap.Logger {
	meta := jobcontext.GetJobMetadata(ctx)
	return r.logger.With(
		zap.String("job_id", meta.JobID.String()),
		zap.String("job_type", meta.JobType),
		zap.Int("attempt", meta.Attempt+1),
		zap.Int("max_attempts", meta.MaxAttempts),
		zap.Duration("elapsed", r.now().Sub(meta.StartTime)),
	)
}

// classify stops the retry loop for errors a retry cannot fix
func classify(err error) error {
	if err == nil {
		return nil
	}
	if !jobcontext.IsRetryableError(err) {
		return backoff.Permanent(err)
	}
	return err
}

// SweepOnce enqueues jobs for recent meetings that have no vector, newest
// first. It returns how many jobs were enqueued.
func (r *Reconciler) SweepOnce(ctx context.Context) (int, error) {
	now := r.now()
	recent, err := r.meetings.ListCreatedSince(ctx, now.Add(-r.cfg.SweepWindow), r.cfg.SweepLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list recent meetings: %w", err)
	}
	if len(recent) == r.cfg.SweepLimit {
		r.logger.Warn("orphan sweep hit its limit, older meetings wait for the next run", zap.Int("limit", r.cfg.SweepLimit))
	}

	cutoff := now.Add(-sweepGrace)
	ids := make([]string, 0, len(recent))
	candidates := make(map[string]*entities.Meeting, len(recent))
	for _, m := range recent {
		if m.CreatedAt.After(cutoff) {
			continue
		}
		id := m.ID.String()
		ids = append(ids, id)
		candidates[id] = m
	}
	if len(ids) == 0 {
		return 0, nil
	}

	existing, err := r.vectors.ExistingMeetingIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to check vector presence: %w", err)
	}

	enqueued := 0
	var errs []error
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			continue
		}
		if err := r.jobs.Enqueue(ctx, candidates[id].ID, "vector missing"); err != nil {
			errs = append(errs, err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		r.logger.Info("orphan sweep enqueued embedding jobs", zap.Int("count", enqueued))
	}
	return enqueued, stdErrors.Join(errs...)
}
