package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleCounterparty(t *testing.T) {
	assert.Equal(t, RoleMentor, RoleLearner.Counterparty())
	assert.Equal(t, RoleLearner, RoleMentor.Counterparty())
	assert.Equal(t, Role(""), Role("admin").Counterparty())
}

func TestParseEnums(t *testing.T) {
	role, ok := ParseRole(" Mentor ")
	assert.True(t, ok)
	assert.Equal(t, RoleMentor, role)
	_, ok = ParseRole("admin")
	assert.False(t, ok)

	typ, ok := ParseRequestType("CANCEL")
	assert.True(t, ok)
	assert.Equal(t, ProjectCancelled, typ.FinalStatus())
	_, ok = ParseRequestType("pause")
	assert.False(t, ok)

	d, ok := ParseDecision("approve")
	assert.True(t, ok)
	assert.Equal(t, DecisionApprove, d)
	_, ok = ParseDecision("maybe")
	assert.False(t, ok)
}

func TestProjectStatusTerminal(t *testing.T) {
	assert.False(t, ProjectOpen.Terminal())
	assert.False(t, ProjectInProgress.Terminal())
	assert.True(t, ProjectCompleted.Terminal())
	assert.True(t, ProjectCancelled.Terminal())
}

func TestProjectLookups(t *testing.T) {
	mentor := uuid.New()
	appID := uuid.New()
	p := Project{
		LearnerID:    uuid.New(),
		Applications: []Application{{ID: appID, MentorID: mentor}},
		Reviews:      []Review{{Side: RoleMentor, Rating: 4.2}},
	}

	_, ok := p.PartyID(RoleMentor)
	assert.False(t, ok, "no mentor assigned yet")

	p.MentorID = &mentor
	id, ok := p.PartyID(RoleMentor)
	assert.True(t, ok)
	assert.Equal(t, mentor, id)

	assert.NotNil(t, p.Application(appID))
	assert.Nil(t, p.Application(uuid.New()))
	assert.Nil(t, p.Review(RoleLearner))
	assert.Equal(t, 4.2, p.Review(RoleMentor).Rating)
}
