package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func validateBreakdown(b models.ReviewBreakdown) error {
	for _, score := range b.Scores() {
		if score < 1 || score > 5 {
			return apperr.Validation("every rating must be between 1 and 5")
		}
	}
	return nil
}

// averageRating is the breakdown mean rounded to one decimal.
func averageRating(b models.ReviewBreakdown) float64 {
	scores := b.Scores()
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return roundRating(float64(sum) / float64(len(scores)))
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// SubmitReview stores the caller's side review of a project whose request
// was approved, then finalizes if the other side has reviewed too.
func (o *Orchestrator) SubmitReview(ctx context.Context, id Identity, projectID uuid.UUID, breakdown models.ReviewBreakdown, comment string) (*models.Project, error) {
	if err := validateBreakdown(breakdown); err != nil {
		return nil, err
	}
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(breakdown)
	if err != nil {
		return nil, apperr.Internal("failed to encode review", errors.WithStack(err))
	}

	finalized := false
	_, err = o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		p := u.project
		if err := requireParty(p, id.Role, profile); err != nil {
			return err
		}
		cr := p.CompletionRequest
		if cr == nil || cr.Status != models.RequestApproved {
			return apperr.Conflict("reviews open only after a completion request is approved")
		}
		if p.Review(id.Role) != nil {
			return apperr.Conflict("you have already reviewed this project")
		}

		review := models.Review{
			ProjectID:  p.ID,
			Side:       id.Role,
			Rating:     averageRating(breakdown),
			Breakdown:  datatypes.JSON(encoded),
			Comment:    strings.TrimSpace(comment),
			ReviewDate: u.now,
		}
		if err := u.tx.CreateReview(ctx, &review); err != nil {
			return err
		}
		p.Reviews = append(p.Reviews, review)
		u.emit(events.ReviewSubmitted, map[string]any{"side": review.Side, "rating": review.Rating})

		if err := o.finalize(ctx, u); err != nil {
			return err
		}
		finalized = p.Status.Terminal()
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("review submitted",
		zap.String("project_id", projectID.String()),
		zap.String("side", string(id.Role)),
		zap.Bool("finalized", finalized))
	return o.reload(ctx, projectID)
}

// finalize moves the project to its terminal status once the request is
// approved and both sides have reviewed. Otherwise it does nothing.
func (o *Orchestrator) finalize(ctx context.Context, u *unit) error {
	p := u.project
	cr := p.CompletionRequest
	if cr == nil || cr.Status != models.RequestApproved {
		return nil
	}
	if p.Review(models.RoleLearner) == nil || p.Review(models.RoleMentor) == nil {
		return nil
	}

	end := u.now
	p.Status = cr.Type.FinalStatus()
	p.ActualEndDate = &end
	if err := u.tx.ClearCompletionRequest(ctx, p.ID); err != nil {
		return err
	}
	p.CompletionRequest = nil
	if err := o.closeRoom(ctx, u); err != nil {
		return err
	}
	if p.MentorID != nil {
		payload := models.MentorRatingPayload{MentorID: p.MentorID.String()}
		if _, err := u.tx.EnqueueJob(ctx, models.JobMentorRating, u.now, payload); err != nil {
			return err
		}
	}

	u.emit(events.ProjectFinalized, map[string]string{"status": string(p.Status), "requestType": string(cr.Type)})
	metrics.Transitions.WithLabelValues("project_" + strings.ToLower(string(p.Status))).Inc()
	o.logger.Info("project finalized", zap.String("project_id", p.ID.String()), zap.String("status", string(p.Status)))
	return nil
}

// RecomputeMentorRating stores the mean learner rating over the mentor's
// projects and queues those projects for reindexing.
func (o *Orchestrator) RecomputeMentorRating(ctx context.Context, mentorID uuid.UUID) error {
	avg, count, err := o.store.MentorRating(ctx, mentorID)
	if err != nil {
		return err
	}
	rating := roundRating(avg)
	if err := o.dir.UpdateMentorRating(ctx, mentorID, rating, int(count)); err != nil {
		return err
	}

	projects, err := o.store.ListProjectsByMentor(ctx, mentorID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	if err := o.syncProjects(o.store.Gorm().WithContext(ctx), ids); err != nil {
		return err
	}

	o.logger.Info("mentor rating updated",
		zap.String("mentor_id", mentorID.String()),
		zap.Float64("rating", rating),
		zap.Int64("reviews", count))
	return nil
}
