package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"gorm.io/gorm"
)

func unreadColumn(side models.Role) string {
	if side == models.RoleMentor {
		return "mentor_unread"
	}
	return "learner_unread"
}

func (s *Store) CreateRoom(ctx context.Context, r *models.MessageRoom) error {
	if err := s.conn(ctx).Create(r).Error; err != nil {
		return classify(err, "room not found", "failed to create room")
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id uuid.UUID) (*models.MessageRoom, error) {
	var r models.MessageRoom
	if err := s.conn(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, classify(err, "room not found", "failed to load room")
	}
	return &r, nil
}

func (s *Store) GetRoomByProject(ctx context.Context, projectID uuid.UUID) (*models.MessageRoom, error) {
	var r models.MessageRoom
	if err := s.conn(ctx).First(&r, "project_id = ?", projectID).Error; err != nil {
		return nil, classify(err, "room not found", "failed to load room")
	}
	return &r, nil
}

// CloseRoom flips an open room to closed and reports whether it changed.
func (s *Store) CloseRoom(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.conn(ctx).Model(&models.MessageRoom{}).
		Where("id = ? AND status = ?", id, models.RoomOpen).
		Updates(map[string]any{"status": models.RoomClosed, "updated_at": s.now()})
	if res.Error != nil {
		return false, classify(res.Error, "room not found", "failed to close room")
	}
	return res.RowsAffected == 1, nil
}

// ListRoomsForParty returns the rooms where profileID plays role, most
// recently active first.
func (s *Store) ListRoomsForParty(ctx context.Context, role models.Role, profileID uuid.UUID, includeClosed bool) ([]models.MessageRoom, error) {
	column := "learner_id"
	if role == models.RoleMentor {
		column = "mentor_id"
	}
	q := s.conn(ctx).Where(column+" = ?", profileID)
	if !includeClosed {
		q = q.Where("status = ?", models.RoomOpen)
	}
	var rooms []models.MessageRoom
	if err := q.Order("updated_at DESC").Find(&rooms).Error; err != nil {
		return nil, classify(err, "room not found", "failed to list rooms")
	}
	return rooms, nil
}

// RecordMessage bumps the room counters for a message addressed to receiver.
// It only touches open rooms; false means the room was closed (or gone) at
// write time.
func (s *Store) RecordMessage(ctx context.Context, roomID uuid.UUID, receiver models.Role, snapshot string, senderID uuid.UUID, at time.Time) (bool, error) {
	col := unreadColumn(receiver)
	res := s.conn(ctx).Model(&models.MessageRoom{}).
		Where("id = ? AND status = ?", roomID, models.RoomOpen).
		Updates(map[string]any{
			col:                      gorm.Expr(col + " + 1"),
			"total_messages":         gorm.Expr("total_messages + 1"),
			"last_message":           snapshot,
			"last_message_sender_id": senderID,
			"last_message_at":        at,
			"updated_at":             at,
		})
	if res.Error != nil {
		return false, classify(res.Error, "room not found", "failed to update room")
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ResetUnread(ctx context.Context, roomID uuid.UUID, side models.Role) error {
	err := s.conn(ctx).Model(&models.MessageRoom{}).Where("id = ?", roomID).
		UpdateColumn(unreadColumn(side), 0).Error
	if err != nil {
		return classify(err, "room not found", "failed to reset unread count")
	}
	return nil
}

func (s *Store) SetWallpaper(ctx context.Context, roomID uuid.UUID, side models.Role, url string) error {
	column := "learner_wallpaper"
	if side == models.RoleMentor {
		column = "mentor_wallpaper"
	}
	err := s.conn(ctx).Model(&models.MessageRoom{}).Where("id = ?", roomID).
		Updates(map[string]any{column: url, "updated_at": s.now()}).Error
	if err != nil {
		return classify(err, "room not found", "failed to update wallpaper")
	}
	return nil
}

// TotalUnread sums the side's unread counters across its rooms.
func (s *Store) TotalUnread(ctx context.Context, side models.Role, profileID uuid.UUID) (int64, error) {
	column := "learner_id"
	if side == models.RoleMentor {
		column = "mentor_id"
	}
	var total int64
	err := s.conn(ctx).Model(&models.MessageRoom{}).
		Select("COALESCE(SUM("+unreadColumn(side)+"), 0)").
		Where(column+" = ?", profileID).
		Scan(&total).Error
	if err != nil {
		return 0, classify(err, "room not found", "failed to count unread messages")
	}
	return total, nil
}
