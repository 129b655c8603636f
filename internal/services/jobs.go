package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
)

// HandleJob runs one scheduled job. Both kinds are idempotent, so a job
// replayed after a crash is harmless.
func (o *Orchestrator) HandleJob(ctx context.Context, job models.ScheduledJob) error {
	switch job.Kind {
	case models.JobCompletionRollback:
		var payload models.RollbackPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode rollback payload: %w", err)
		}
		return o.rollbackRequest(ctx, payload)
	case models.JobMentorRating:
		var payload models.MentorRatingPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode rating payload: %w", err)
		}
		mentorID, err := uuid.Parse(payload.MentorID)
		if err != nil {
			return fmt.Errorf("invalid mentor id %q: %w", payload.MentorID, err)
		}
		return o.RecomputeMentorRating(ctx, mentorID)
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}
