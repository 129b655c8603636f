package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type NewProject struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription"`
	FullDescription  string   `json:"fullDescription"`
	Category         string   `json:"category"`
	TechStack        []string `json:"techStack"`
	OpeningPrice     float64  `json:"openingPrice"`
	ExpectedDuration string   `json:"expectedDuration"`
}

func (n NewProject) validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return apperr.Validation("name is required")
	}
	if n.OpeningPrice < 0 {
		return apperr.Validation("openingPrice must not be negative")
	}
	return nil
}

type Proposal struct {
	ProposedPrice     float64 `json:"proposedPrice"`
	CoverLetter       string  `json:"coverLetter"`
	EstimatedDuration string  `json:"estimatedDuration"`
}

func (p Proposal) validate() error {
	if p.ProposedPrice < 0 {
		return apperr.Validation("proposedPrice must not be negative")
	}
	if strings.TrimSpace(p.CoverLetter) == "" {
		return apperr.Validation("coverLetter is required")
	}
	return nil
}

// CreateProject posts a new Open project owned by the calling learner.
func (o *Orchestrator) CreateProject(ctx context.Context, id Identity, in NewProject) (*models.Project, error) {
	if err := requireRole(id, models.RoleLearner); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	learnerID, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}

	stack := in.TechStack
	if stack == nil {
		stack = []string{}
	}
	encoded, err := json.Marshal(stack)
	if err != nil {
		return nil, apperr.Internal("failed to encode tech stack", errors.WithStack(err))
	}

	p := &models.Project{
		LearnerID:        learnerID,
		Name:             strings.TrimSpace(in.Name),
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		Category:         in.Category,
		TechStack:        datatypes.JSON(encoded),
		OpeningPrice:     in.OpeningPrice,
		ExpectedDuration: in.ExpectedDuration,
		Status:           models.ProjectOpen,
	}
	now := o.now()
	p.CreatedAt, p.UpdatedAt = now, now

	err = o.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.CreateProject(ctx, p); err != nil {
			return err
		}
		return o.syncProject(tx.Gorm(), p, models.OutboxOpUpsert)
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("project created", zap.String("project_id", p.ID.String()), zap.String("learner_id", learnerID.String()))
	o.publish([]events.Event{{Type: events.ProjectCreated, ProjectID: p.ID.String(), OccurredAt: now}})
	return p, nil
}

// GetProject returns a project to one of its parties, or to any mentor while
// it is still Open. Views by anyone but the owner are counted.
func (o *Orchestrator) GetProject(ctx context.Context, id Identity, projectID uuid.UUID) (*models.Project, error) {
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if party, ok := p.PartyID(id.Role); ok && party == profile {
		return p, nil
	}
	if id.Role != models.RoleMentor || p.Status != models.ProjectOpen {
		return nil, apperr.Forbidden("you are not a party to this project")
	}
	if err := o.store.IncrementViews(ctx, projectID); err != nil {
		o.logger.Warn("view count not updated", zap.String("project_id", projectID.String()), zap.Error(err))
	} else {
		p.ViewCount++
	}
	return p, nil
}

// ListMyProjects returns the learner's own projects or the mentor's assigned
// ones.
func (o *Orchestrator) ListMyProjects(ctx context.Context, id Identity) ([]models.Project, error) {
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}
	if id.Role == models.RoleMentor {
		return o.store.ListProjectsByMentor(ctx, profile)
	}
	return o.store.ListProjectsByLearner(ctx, profile)
}

// DeleteProject removes an Open project that has no mentor yet.
func (o *Orchestrator) DeleteProject(ctx context.Context, id Identity, projectID uuid.UUID) error {
	if err := requireRole(id, models.RoleLearner); err != nil {
		return err
	}
	learnerID, err := o.profileID(ctx, id)
	if err != nil {
		return err
	}

	_, err = o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		p := u.project
		if p.LearnerID != learnerID {
			return apperr.Forbidden("only the project owner can delete it")
		}
		if p.Status != models.ProjectOpen || p.MentorID != nil {
			return apperr.Conflict("only open projects without a mentor can be deleted")
		}
		if err := u.tx.DeleteProject(ctx, p); err != nil {
			return err
		}
		if err := o.syncProject(u.tx.Gorm(), p, models.OutboxOpDelete); err != nil {
			return err
		}
		u.deleted = true
		u.emit(events.ProjectDeleted, nil)
		return nil
	})
	if err != nil {
		return err
	}
	o.logger.Info("project deleted", zap.String("project_id", projectID.String()))
	return nil
}

// Apply records a mentor's bid on an Open project.
func (o *Orchestrator) Apply(ctx context.Context, id Identity, projectID uuid.UUID, in Proposal) (*models.Application, error) {
	if err := requireRole(id, models.RoleMentor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	mentorID, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}

	var app *models.Application
	_, err = o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		p := u.project
		if p.Status != models.ProjectOpen {
			return apperr.Conflict("project is not open for applications")
		}
		if p.MentorID != nil {
			return apperr.Conflict("project already has a mentor")
		}
		for _, existing := range p.Applications {
			if existing.MentorID == mentorID {
				return apperr.Conflict("you have already applied to this project")
			}
		}

		app = &models.Application{
			ProjectID:         p.ID,
			MentorID:          mentorID,
			ProposedPrice:     in.ProposedPrice,
			CoverLetter:       in.CoverLetter,
			EstimatedDuration: in.EstimatedDuration,
			ApplicationStatus: models.ApplicationPending,
			AppliedAt:         u.now,
			UpdatedAt:         u.now,
		}
		if err := u.tx.CreateApplication(ctx, app); err != nil {
			return err
		}
		p.Applications = append(p.Applications, *app)
		p.ApplicationsCount++
		u.emit(events.ApplicationSubmitted, map[string]string{
			"applicationId": app.ID.String(),
			"mentorId":      mentorID.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("application submitted",
		zap.String("project_id", projectID.String()),
		zap.String("application_id", app.ID.String()),
		zap.String("mentor_id", mentorID.String()))
	return app, nil
}

// AcceptApplication assigns the application's mentor, rejects every other
// pending bid and opens the project's room, all in one transaction.
func (o *Orchestrator) AcceptApplication(ctx context.Context, id Identity, projectID, applicationID uuid.UUID) (*models.Project, error) {
	if err := requireRole(id, models.RoleLearner); err != nil {
		return nil, err
	}
	learnerID, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = o.mutate(ctx, projectID, func(ctx context.Context, u *unit) error {
		p := u.project
		if p.LearnerID != learnerID {
			return apperr.Forbidden("only the project owner can accept applications")
		}
		app := p.Application(applicationID)
		if app == nil {
			return apperr.NotFound("application not found")
		}
		if app.ApplicationStatus != models.ApplicationPending {
			return apperr.Conflict("application has already been processed")
		}
		if p.Status != models.ProjectOpen || p.MentorID != nil {
			return apperr.Conflict("project is not open")
		}

		if err := u.tx.SetApplicationStatus(ctx, app.ID, models.ApplicationAccepted); err != nil {
			return err
		}
		rejected, err := u.tx.RejectPendingApplications(ctx, p.ID, app.ID)
		if err != nil {
			return err
		}
		for i := range p.Applications {
			if p.Applications[i].ID == app.ID {
				p.Applications[i].ApplicationStatus = models.ApplicationAccepted
			} else if p.Applications[i].ApplicationStatus == models.ApplicationPending {
				p.Applications[i].ApplicationStatus = models.ApplicationRejected
			}
		}

		mentorID := app.MentorID
		price := app.ProposedPrice
		start := u.now
		p.MentorID = &mentorID
		p.Status = models.ProjectInProgress
		p.StartDate = &start
		p.NegotiatedPrice = &price
		if app.EstimatedDuration != "" {
			p.ExpectedDuration = app.EstimatedDuration
		}

		if err := o.openRoom(ctx, u); err != nil {
			return err
		}
		u.emit(events.ApplicationAccepted, map[string]any{
			"applicationId": app.ID.String(),
			"mentorId":      mentorID.String(),
			"rejected":      rejected,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transitions.WithLabelValues("application_accepted").Inc()
	o.logger.Info("application accepted",
		zap.String("project_id", projectID.String()),
		zap.String("application_id", applicationID.String()))
	return o.reload(ctx, projectID)
}
