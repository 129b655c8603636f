package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
)

// requireParty checks that profileID plays the caller's role on p.
func requireParty(p *models.Project, role models.Role, profileID uuid.UUID) error {
	party, ok := p.PartyID(role)
	if !ok || party != profileID {
		return apperr.Forbidden("you are not a party to this project")
	}
	return nil
}

// RaiseRequest opens a completion or cancellation request on an In Progress
// project. A previously rejected request is superseded; a pending or
// approved one blocks the raise.
func (o *Orchestrator) RaiseRequest(ctx context.Context, id Identity, projectID uuid.UUID, kind models.RequestType, notes string) (*models.CompletionRequest, error) {
	if kind.FinalStatus() == "" {
		return nil, apperr.Validation("type must be complete or cancel")
	}
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}

	var cr *models.CompletionRequest
	_, err = o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		p := u.project
		if err := requireParty(p, id.Role, profile); err != nil {
			return err
		}
		if p.Status != models.ProjectInProgress {
			return apperr.Conflict("project is not in progress")
		}
		if current := p.CompletionRequest; current != nil {
			switch current.Status {
			case models.RequestPending:
				return apperr.Conflict("a completion request is already pending")
			case models.RequestApproved:
				return apperr.Conflict("a completion request is already approved and awaiting reviews")
			case models.RequestRejected:
			}
		}

		cr = &models.CompletionRequest{
			ProjectID:   p.ID,
			From:        id.Role,
			Type:        kind,
			Status:      models.RequestPending,
			RequestedAt: u.now,
		}
		cr.SetNotes(id.Role, notes)
		if err := u.tx.ReplaceCompletionRequest(ctx, cr); err != nil {
			return err
		}
		p.CompletionRequest = cr
		u.emit(events.CompletionRequested, map[string]string{
			"requestId": cr.ID.String(),
			"from":      string(cr.From),
			"type":      string(cr.Type),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues("completion_requested").Inc()
	o.logger.Info("completion request raised",
		zap.String("project_id", projectID.String()),
		zap.String("from", string(id.Role)),
		zap.String("type", string(kind)))
	return cr, nil
}

// RespondRequest lets the counterparty approve or reject the pending
// request. Approval waits for both reviews before the project finalizes;
// rejection schedules the request to clear after the rollback delay.
func (o *Orchestrator) RespondRequest(ctx context.Context, id Identity, projectID uuid.UUID, decision models.Decision, notes string) (*models.CompletionRequest, error) {
	if decision != models.DecisionApprove && decision != models.DecisionReject {
		return nil, apperr.Validation("response must be approve or reject")
	}
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}

	var cr models.CompletionRequest
	_, err = o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		p := u.project
		if err := requireParty(p, id.Role, profile); err != nil {
			return err
		}
		current := p.CompletionRequest
		if current == nil {
			return apperr.NotFound("no completion request to respond to")
		}
		if current.Status != models.RequestPending {
			return apperr.Conflict("completion request has already been answered")
		}
		if current.From.Counterparty() != id.Role {
			return apperr.Forbidden("only the other party can respond to this request")
		}

		current.SetNotes(id.Role, notes)
		now := u.now
		switch decision {
		case models.DecisionApprove:
			current.Status = models.RequestApproved
			current.ApprovedAt = &now
		case models.DecisionReject:
			current.Status = models.RequestRejected
			current.RejectedAt = &now
		}
		if err := u.tx.SaveCompletionRequest(ctx, current); err != nil {
			return err
		}

		data := map[string]string{"requestId": current.ID.String(), "type": string(current.Type)}
		if decision == models.DecisionReject {
			payload := models.RollbackPayload{
				ProjectID:  p.ID.String(),
				RequestID:  current.ID.String(),
				RejectedAt: now,
			}
			if _, err := u.tx.EnqueueJob(ctx, models.JobCompletionRollback, now.Add(o.rollbackDelay), payload); err != nil {
				return err
			}
			u.emit(events.CompletionRejected, data)
		} else {
			u.emit(events.CompletionApproved, data)
			if err := o.finalize(ctx, u); err != nil {
				return err
			}
		}
		cr = *current
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues("completion_" + string(cr.Status)).Inc()
	o.logger.Info("completion request answered",
		zap.String("project_id", projectID.String()),
		zap.String("decision", string(decision)))
	return &cr, nil
}

// GetCompletionRequest returns the project's current request, or nil.
func (o *Orchestrator) GetCompletionRequest(ctx context.Context, id Identity, projectID uuid.UUID) (*models.CompletionRequest, error) {
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireParty(p, id.Role, profile); err != nil {
		return nil, err
	}
	return p.CompletionRequest, nil
}

// rollbackRequest clears the request named by the payload, but only if it
// is still that same rejected request. Anything else means it was
// superseded and the job has nothing to do.
func (o *Orchestrator) rollbackRequest(ctx context.Context, payload models.RollbackPayload) error {
	projectID, err := uuid.Parse(payload.ProjectID)
	if err != nil {
		return apperr.Validation("invalid project id in rollback payload")
	}
	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		return apperr.Validation("invalid request id in rollback payload")
	}

	u, err := o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		current := u.project.CompletionRequest
		if current == nil || current.ID != requestID || current.Status != models.RequestRejected {
			u.noop = true
			return nil
		}
		if err := u.tx.ClearCompletionRequest(ctx, u.project.ID); err != nil {
			return err
		}
		u.project.CompletionRequest = nil
		u.emit(events.CompletionRolledBack, map[string]string{"requestId": requestID.String()})
		return nil
	})
	if apperr.Is(err, apperr.CodeNotFound) {
		o.logger.Info("rollback skipped, project is gone", zap.String("project_id", payload.ProjectID))
		return nil
	}
	if err != nil {
		return err
	}

	if u.noop {
		o.logger.Info("rollback superseded", zap.String("project_id", payload.ProjectID), zap.String("request_id", payload.RequestID))
		return nil
	}
	metrics.Transitions.WithLabelValues("completion_rolled_back").Inc()
	o.logger.Info("rejected completion request cleared", zap.String("project_id", payload.ProjectID), zap.String("request_id", payload.RequestID))
	return nil
}
