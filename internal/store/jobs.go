package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// EnqueueJob schedules a durable job. Call it on a transactional store so the
// job commits together with the state change that needs it.
func (s *Store) EnqueueJob(ctx context.Context, kind models.JobKind, dueAt time.Time, payload any) (*models.ScheduledJob, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Internal("failed to encode job payload", errors.WithStack(err))
	}
	job := models.ScheduledJob{
		Kind:    kind,
		Payload: datatypes.JSON(data),
		DueAt:   dueAt,
		Status:  models.JobPending,
	}
	if err := s.conn(ctx).Create(&job).Error; err != nil {
		return nil, classify(err, "job not found", "failed to schedule job")
	}
	return &job, nil
}

// ClaimDueJobs leases up to limit jobs that are due, including running jobs
// whose lease expired (their worker died). Each claim is a conditional
// update, so two workers never run the same attempt.
func (s *Store) ClaimDueJobs(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]models.ScheduledJob, error) {
	var candidates []models.ScheduledJob
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("(status = ? AND due_at <= ?) OR (status = ? AND locked_until < ?)",
			models.JobPending, now, models.JobRunning, now).
		Order("due_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, classify(err, "job not found", "failed to fetch due jobs")
	}

	lockedUntil := now.Add(lease)
	claimed := make([]models.ScheduledJob, 0, len(candidates))
	for _, job := range candidates {
		res := s.conn(ctx).Model(&models.ScheduledJob{}).
			Where("id = ? AND status = ? AND attempts = ?", job.ID, job.Status, job.Attempts).
			Updates(map[string]any{
				"status":       models.JobRunning,
				"attempts":     job.Attempts + 1,
				"locked_until": lockedUntil,
				"updated_at":   now,
			})
		if res.Error != nil {
			return claimed, classify(res.Error, "job not found", "failed to claim job")
		}
		if res.RowsAffected == 0 {
			continue
		}
		job.Status = models.JobRunning
		job.Attempts++
		job.LockedUntil = &lockedUntil
		claimed = append(claimed, job)
	}
	return claimed, nil
}

func (s *Store) CompleteJob(ctx context.Context, id int64, at time.Time) error {
	err := s.conn(ctx).Model(&models.ScheduledJob{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.JobCompleted,
			"completed_at": at,
			"locked_until": nil,
			"last_error":   "",
			"updated_at":   at,
		}).Error
	if err != nil {
		return classify(err, "job not found", "failed to complete job")
	}
	return nil
}

// RetryJob puts a failed attempt back in the queue at retryAt, or parks it as
// failed when final is set.
func (s *Store) RetryJob(ctx context.Context, id int64, cause string, retryAt time.Time, final bool) error {
	status := models.JobPending
	if final {
		status = models.JobFailed
	}
	err := s.conn(ctx).Model(&models.ScheduledJob{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"due_at":       retryAt,
			"locked_until": nil,
			"last_error":   cause,
			"updated_at":   s.now(),
		}).Error
	if err != nil {
		return classify(err, "job not found", "failed to reschedule job")
	}
	return nil
}

func (s *Store) ListJobs(ctx context.Context, kind models.JobKind) ([]models.ScheduledJob, error) {
	var jobs []models.ScheduledJob
	if err := s.conn(ctx).Where("kind = ?", kind).Order("id ASC").Find(&jobs).Error; err != nil {
		return nil, classify(err, "job not found", "failed to list jobs")
	}
	return jobs, nil
}
