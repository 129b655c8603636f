package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
)

// Identity is the authenticated caller as forwarded by the gateway.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// Counterpart is the public face of the other party of a room.
type Counterpart struct {
	UserID uuid.UUID   `json:"userId"`
	Name   string      `json:"name"`
	Avatar string      `json:"avatar"`
	Role   models.Role `json:"role"`
}

// profileID maps the caller's account to its learner or mentor profile.
func (o *Orchestrator) profileID(ctx context.Context, id Identity) (uuid.UUID, error) {
	switch id.Role {
	case models.RoleLearner:
		l, err := o.dir.LearnerByUserID(ctx, id.UserID)
		if err != nil {
			return uuid.Nil, noProfile(err, "learner")
		}
		return l.ID, nil
	case models.RoleMentor:
		m, err := o.dir.MentorByUserID(ctx, id.UserID)
		if err != nil {
			return uuid.Nil, noProfile(err, "mentor")
		}
		return m.ID, nil
	default:
		return uuid.Nil, apperr.Forbidden("unknown role")
	}
}

func noProfile(err error, role string) error {
	if apperr.Is(err, apperr.CodeNotFound) {
		return apperr.New(apperr.CodeForbidden, "no "+role+" profile for this account", err)
	}
	return err
}

// requireRole fails unless the caller acts as role.
func requireRole(id Identity, role models.Role) error {
	if id.Role != role {
		return apperr.Forbidden("only a " + string(role) + " can do this")
	}
	return nil
}

// partyUserID returns the account behind the profile playing role.
func (o *Orchestrator) partyUserID(ctx context.Context, role models.Role, profileID uuid.UUID) (uuid.UUID, error) {
	switch role {
	case models.RoleLearner:
		l, err := o.dir.GetLearner(ctx, profileID)
		if err != nil {
			return uuid.Nil, err
		}
		return l.UserID, nil
	case models.RoleMentor:
		m, err := o.dir.GetMentor(ctx, profileID)
		if err != nil {
			return uuid.Nil, err
		}
		return m.UserID, nil
	default:
		return uuid.Nil, apperr.Internal("unknown role "+string(role), nil)
	}
}

func (o *Orchestrator) counterpart(ctx context.Context, role models.Role, profileID uuid.UUID) (*Counterpart, error) {
	userID, err := o.partyUserID(ctx, role, profileID)
	if err != nil {
		return nil, err
	}
	u, err := o.dir.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Counterpart{UserID: u.ID, Name: u.Name, Avatar: u.AvatarURL, Role: role}, nil
}
