// Package services implements the project collaboration workflow: the
// application, completion-request, review and message-room rules. The
// Orchestrator is the only writer of project status.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"go.uber.org/zap"
)

// Directory resolves accounts to learner and mentor profiles.
type Directory interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	LearnerByUserID(ctx context.Context, userID uuid.UUID) (*models.Learner, error)
	MentorByUserID(ctx context.Context, userID uuid.UUID) (*models.Mentor, error)
	GetLearner(ctx context.Context, id uuid.UUID) (*models.Learner, error)
	GetMentor(ctx context.Context, id uuid.UUID) (*models.Mentor, error)
	UpdateMentorRating(ctx context.Context, mentorID uuid.UUID, rating float64, count int) error
}

type Options struct {
	RollbackDelay time.Duration
	MaxRetries    int
	// Outbox enables search sync events. Leave it off when nothing drains
	// the outbox table.
	Outbox bool
}

type Orchestrator struct {
	store         *store.Store
	dir           Directory
	events        events.Publisher
	logger        *zap.Logger
	now           func() time.Time
	rollbackDelay time.Duration
	maxRetries    int
	outbox        bool
}

func NewOrchestrator(st *store.Store, dir Directory, pub events.Publisher, logger *zap.Logger, opts Options) *Orchestrator {
	if opts.RollbackDelay <= 0 {
		opts.RollbackDelay = 5 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 5
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Orchestrator{
		store:         st,
		dir:           dir,
		events:        pub,
		logger:        logger.Named("workflow"),
		now:           func() time.Time { return time.Now().UTC() },
		rollbackDelay: opts.RollbackDelay,
		maxRetries:    opts.MaxRetries,
		outbox:        opts.Outbox,
	}
}

// WithClock replaces the time source for workflow timestamps and job due
// times.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	cp := *o
	cp.now = now
	cp.store = o.store.WithClock(now)
	return &cp
}

// unit is one attempt at a project mutation. Everything written through tx
// commits or rolls back together.
type unit struct {
	tx      *store.Store
	project *models.Project
	now     time.Time
	emitted []events.Event
	deleted bool
	noop    bool
}

func (u *unit) emit(eventType string, data any) {
	u.emitted = append(u.emitted, events.Event{
		Type:       eventType,
		ProjectID:  u.project.ID.String(),
		Data:       data,
		OccurredAt: u.now,
	})
}

// mutate loads the project, applies fn and saves it at the loaded version,
// all in one transaction. A concurrent writer makes the save fail; the
// whole attempt is then replayed against fresh state.
func (o *Orchestrator) mutate(ctx context.Context, projectID uuid.UUID, fn func(ctx context.Context, u *unit) error) (*unit, error) {
	for attempt := 1; ; attempt++ {
		var u *unit
		err := o.store.WithTx(ctx, func(tx *store.Store) error {
			p, err := tx.GetProject(ctx, projectID)
			if err != nil {
				return err
			}
			u = &unit{tx: tx, project: p, now: o.now()}
			if err := fn(ctx, u); err != nil {
				return err
			}
			if u.noop || u.deleted {
				return nil
			}
			if err := tx.SaveProject(ctx, u.project); err != nil {
				return err
			}
			return o.syncProject(tx.Gorm(), u.project, models.OutboxOpUpsert)
		})
		if errors.Is(err, store.ErrStaleProject) {
			metrics.ConcurrencyRetries.Inc()
			o.logger.Debug("project version conflict, retrying",
				zap.String("project_id", projectID.String()), zap.Int("attempt", attempt))
			if attempt >= o.maxRetries {
				return nil, apperr.New(apperr.CodeConflict, "project was modified concurrently, please retry", err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		o.publish(u.emitted)
		return u, nil
	}
}

// publish forwards committed events. Delivery is best effort; the database
// already holds the truth.
func (o *Orchestrator) publish(evts []events.Event) {
	for _, e := range evts {
		if err := o.events.Publish(e); err != nil {
			o.logger.Warn("event publish failed", zap.String("type", e.Type), zap.String("project_id", e.ProjectID), zap.Error(err))
		}
	}
}

// reload returns the committed project aggregate.
func (o *Orchestrator) reload(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return o.store.GetProject(ctx, projectID)
}
