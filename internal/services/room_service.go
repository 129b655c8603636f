package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
)

// RoomView is a room as seen by one of its parties.
type RoomView struct {
	*models.MessageRoom
	ProjectName string       `json:"projectName"`
	Counterpart *Counterpart `json:"counterpart"`
	UnreadCount int          `json:"unreadCount"`
	Wallpaper   string       `json:"wallpaper"`
}

// openRoom creates the project's room unless it already has one.
func (o *Orchestrator) openRoom(ctx context.Context, u *unit) error {
	p := u.project
	existing, err := u.tx.GetRoomByProject(ctx, p.ID)
	if err == nil {
		o.logger.Debug("room already exists", zap.String("room_id", existing.ID.String()))
		return nil
	}
	if !apperr.Is(err, apperr.CodeNotFound) {
		return err
	}
	if p.LearnerID == uuid.Nil || p.MentorID == nil {
		return apperr.Conflict("room needs both a learner and a mentor")
	}

	room := &models.MessageRoom{
		ProjectID: p.ID,
		LearnerID: p.LearnerID,
		MentorID:  *p.MentorID,
		Status:    models.RoomOpen,
		CreatedAt: u.now,
		UpdatedAt: u.now,
	}
	if err := u.tx.CreateRoom(ctx, room); err != nil {
		return err
	}
	u.emit(events.RoomOpened, map[string]string{"roomId": room.ID.String()})
	return nil
}

// closeRoom closes the project's room if it has an open one.
func (o *Orchestrator) closeRoom(ctx context.Context, u *unit) error {
	room, err := u.tx.GetRoomByProject(ctx, u.project.ID)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	changed, err := u.tx.CloseRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	if changed {
		u.emit(events.RoomClosed, map[string]string{"roomId": room.ID.String()})
	}
	return nil
}

// roomAccess is a room loaded on behalf of one of its parties.
type roomAccess struct {
	room      *models.MessageRoom
	side      models.Role
	profileID uuid.UUID
}

func (o *Orchestrator) enterRoom(ctx context.Context, id Identity, roomID uuid.UUID) (*roomAccess, error) {
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := o.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.PartyID(id.Role) != profile {
		return nil, apperr.Forbidden("you are not a member of this room")
	}
	return &roomAccess{room: room, side: id.Role, profileID: profile}, nil
}

func (o *Orchestrator) view(ctx context.Context, room *models.MessageRoom, side models.Role) (*RoomView, error) {
	other := side.Counterparty()
	cp, err := o.counterpart(ctx, other, room.PartyID(other))
	if err != nil {
		return nil, err
	}
	v := &RoomView{
		MessageRoom: room,
		Counterpart: cp,
		UnreadCount: room.Unread(side),
		Wallpaper:   room.LearnerWallpaper,
	}
	if side == models.RoleMentor {
		v.Wallpaper = room.MentorWallpaper
	}
	if p, err := o.store.GetProject(ctx, room.ProjectID); err == nil {
		v.ProjectName = p.Name
	}
	return v, nil
}

// ListRooms returns the caller's rooms with counterpart identity, most
// recently active first. Closed rooms are included only on request.
func (o *Orchestrator) ListRooms(ctx context.Context, id Identity, includeClosed bool) ([]RoomView, error) {
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return nil, err
	}
	rooms, err := o.store.ListRoomsForParty(ctx, id.Role, profile, includeClosed)
	if err != nil {
		return nil, err
	}
	out := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		v, err := o.view(ctx, &rooms[i], id.Role)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (o *Orchestrator) GetRoom(ctx context.Context, id Identity, roomID uuid.UUID) (*RoomView, error) {
	acc, err := o.enterRoom(ctx, id, roomID)
	if err != nil {
		return nil, err
	}
	return o.view(ctx, acc.room, acc.side)
}

// RoomForProject returns the room of a project the caller is a party to.
func (o *Orchestrator) RoomForProject(ctx context.Context, id Identity, projectID uuid.UUID) (*RoomView, error) {
	room, err := o.store.GetRoomByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return o.GetRoom(ctx, id, room.ID)
}

// UnreadCount sums the caller's unread messages over all rooms.
func (o *Orchestrator) UnreadCount(ctx context.Context, id Identity) (int64, error) {
	profile, err := o.profileID(ctx, id)
	if err != nil {
		return 0, err
	}
	return o.store.TotalUnread(ctx, id.Role, profile)
}

// SetWallpaper stores the caller's wallpaper for the room. An empty URL
// resets it.
func (o *Orchestrator) SetWallpaper(ctx context.Context, id Identity, roomID uuid.UUID, url string) (*RoomView, error) {
	acc, err := o.enterRoom(ctx, id, roomID)
	if err != nil {
		return nil, err
	}
	url = strings.TrimSpace(url)
	if len(url) > 2048 {
		return nil, apperr.Validation("wallpaper URL is too long")
	}
	if err := o.store.SetWallpaper(ctx, roomID, acc.side, url); err != nil {
		return nil, err
	}
	room, err := o.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return o.view(ctx, room, acc.side)
}
