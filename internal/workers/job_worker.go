package workers

import (
	"context"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"go.uber.org/zap"
)

type JobHandler interface {
	HandleJob(ctx context.Context, job models.ScheduledJob) error
}

// JobWorker runs durable scheduled jobs. Jobs are leased, so a job held by
// a crashed process becomes claimable again once its lease expires.
type JobWorker struct {
	Store       *store.Store
	Handler     JobHandler
	Logger      *zap.Logger
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	Lease       time.Duration
	Now         func() time.Time
}

func (w *JobWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now().UTC()
}

func (w *JobWorker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.Logger.Error("scheduled job poll failed", zap.Error(err))
			}
		}
	}
}

// RunOnce executes every job due now and reports how many ran.
func (w *JobWorker) RunOnce(ctx context.Context) (int, error) {
	batch := w.BatchSize
	if batch <= 0 {
		batch = 50
	}
	lease := w.Lease
	if lease <= 0 {
		lease = time.Minute
	}

	jobs, err := w.Store.ClaimDueJobs(ctx, w.now(), lease, batch)
	if err != nil {
		return 0, err
	}
	for _, job := range jobs {
		w.execute(ctx, job)
	}
	return len(jobs), nil
}

func (w *JobWorker) execute(ctx context.Context, job models.ScheduledJob) {
	log := w.Logger.With(zap.Int64("job_id", job.ID), zap.String("kind", string(job.Kind)), zap.Int("attempt", job.Attempts))

	err := w.Handler.HandleJob(ctx, job)
	if err == nil {
		if err := w.Store.CompleteJob(ctx, job.ID, w.now()); err != nil {
			log.Error("failed to mark job completed", zap.Error(err))
			return
		}
		metrics.JobRuns.WithLabelValues(string(job.Kind), "completed").Inc()
		log.Debug("job completed")
		return
	}

	maxAttempts := w.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	final := job.Attempts >= maxAttempts
	retryAt := w.now().Add(backoff(job.Attempts))
	if rerr := w.Store.RetryJob(ctx, job.ID, err.Error(), retryAt, final); rerr != nil {
		log.Error("failed to reschedule job", zap.Error(rerr))
		return
	}
	if final {
		metrics.JobRuns.WithLabelValues(string(job.Kind), "failed").Inc()
		log.Error("job failed permanently", zap.Error(err))
		return
	}
	metrics.JobRuns.WithLabelValues(string(job.Kind), "retried").Inc()
	log.Warn("job failed, will retry", zap.Time("retry_at", retryAt), zap.Error(err))
}

// backoff doubles from one second, capped at five minutes.
func backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Second
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= 5*time.Minute {
			return 5 * time.Minute
		}
	}
	return d
}
