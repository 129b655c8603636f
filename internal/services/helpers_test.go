package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/db/dbtest"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/directory"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/services"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/workers"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type party struct {
	id      services.Identity
	profile uuid.UUID
}

type env struct {
	t       *testing.T
	ctx     context.Context
	gdb     *gorm.DB
	store   *store.Store
	orch    *services.Orchestrator
	jobs    *workers.JobWorker
	clock   *fakeClock
	pub     *capturePublisher
	learner party
	mentorA party
	mentorB party
	other   party
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb := dbtest.Open(t)
	clock := &fakeClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	pub := &capturePublisher{}
	st := store.New(gdb).WithClock(clock.Now)
	orch := services.NewOrchestrator(st, directory.New(gdb), pub, zap.NewNop(), services.Options{
		RollbackDelay: 5 * time.Second,
		MaxRetries:    3,
		Outbox:        true,
	}).WithClock(clock.Now)

	e := &env{
		t:     t,
		ctx:   context.Background(),
		gdb:   gdb,
		store: st,
		orch:  orch,
		clock: clock,
		pub:   pub,
		jobs: &workers.JobWorker{
			Store:   st,
			Handler: orch,
			Logger:  zap.NewNop(),
			Now:     clock.Now,
		},
	}
	e.learner = e.addUser("Lena Learner", models.RoleLearner)
	e.mentorA = e.addUser("Arun Mentor", models.RoleMentor)
	e.mentorB = e.addUser("Bea Mentor", models.RoleMentor)
	e.other = e.addUser("Olli Learner", models.RoleLearner)
	return e
}

func (e *env) addUser(name string, role models.Role) party {
	e.t.Helper()
	u := models.User{Name: name, Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(e.t, e.gdb.Create(&u).Error)

	var profile uuid.UUID
	if role == models.RoleLearner {
		l := models.Learner{UserID: u.ID}
		require.NoError(e.t, e.gdb.Create(&l).Error)
		profile = l.ID
	} else {
		m := models.Mentor{UserID: u.ID}
		require.NoError(e.t, e.gdb.Create(&m).Error)
		profile = m.ID
	}
	return party{id: services.Identity{UserID: u.ID, Role: role}, profile: profile}
}

func (e *env) createProject() *models.Project {
	e.t.Helper()
	p, err := e.orch.CreateProject(e.ctx, e.learner.id, services.NewProject{
		Name:         "Budget tracker",
		TechStack:    []string{"go", "react"},
		OpeningPrice: 150,
	})
	require.NoError(e.t, err)
	return p
}

func (e *env) apply(p *models.Project, m party, price float64) *models.Application {
	e.t.Helper()
	app, err := e.orch.Apply(e.ctx, m.id, p.ID, services.Proposal{
		ProposedPrice:     price,
		CoverLetter:       "I have shipped this before.",
		EstimatedDuration: "2 weeks",
	})
	require.NoError(e.t, err)
	return app
}

// inProgress returns a project with mentor A assigned.
func (e *env) inProgress() *models.Project {
	e.t.Helper()
	p := e.createProject()
	app := e.apply(p, e.mentorA, 140)
	e.apply(p, e.mentorB, 120)
	p, err := e.orch.AcceptApplication(e.ctx, e.learner.id, p.ID, app.ID)
	require.NoError(e.t, err)
	return p
}

func (e *env) project(id uuid.UUID) *models.Project {
	e.t.Helper()
	p, err := e.store.GetProject(e.ctx, id)
	require.NoError(e.t, err)
	return p
}

func (e *env) room(projectID uuid.UUID) *models.MessageRoom {
	e.t.Helper()
	r, err := e.store.GetRoomByProject(e.ctx, projectID)
	require.NoError(e.t, err)
	return r
}

func (e *env) runJobs() int {
	e.t.Helper()
	n, err := e.jobs.RunOnce(e.ctx)
	require.NoError(e.t, err)
	return n
}

func scores(v int) models.ReviewBreakdown {
	return models.ReviewBreakdown{Communication: v, Expertise: v, Timeliness: v, Professionalism: v, Overall: v}
}
