package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
)

func (s *Store) CreateMessage(ctx context.Context, m *models.MessageChat) error {
	if err := s.conn(ctx).Create(m).Error; err != nil {
		return classify(err, "message not found", "failed to save message")
	}
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id uuid.UUID) (*models.MessageChat, error) {
	var m models.MessageChat
	if err := s.conn(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, classify(err, "message not found", "failed to load message")
	}
	return &m, nil
}

// ListMessages returns one page of the room's history, newest first, and the
// room's total message count.
func (s *Store) ListMessages(ctx context.Context, roomID uuid.UUID, offset, limit int) ([]models.MessageChat, int64, error) {
	var total int64
	if err := s.conn(ctx).Model(&models.MessageChat{}).Where("room_id = ?", roomID).Count(&total).Error; err != nil {
		return nil, 0, classify(err, "room not found", "failed to count messages")
	}
	var items []models.MessageChat
	err := s.conn(ctx).Where("room_id = ?", roomID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, classify(err, "room not found", "failed to list messages")
	}
	return items, total, nil
}

// MessagesSince returns messages created strictly after since, oldest first.
func (s *Store) MessagesSince(ctx context.Context, roomID uuid.UUID, since time.Time, limit int) ([]models.MessageChat, error) {
	var items []models.MessageChat
	err := s.conn(ctx).Where("room_id = ? AND created_at > ?", roomID, since).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, classify(err, "room not found", "failed to poll messages")
	}
	return items, nil
}

// MarkRead marks every unread message addressed to receiverID in the room.
func (s *Store) MarkRead(ctx context.Context, roomID, receiverID uuid.UUID, at time.Time) (int64, error) {
	res := s.conn(ctx).Model(&models.MessageChat{}).
		Where("room_id = ? AND receiver_id = ? AND is_read = ?", roomID, receiverID, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if res.Error != nil {
		return 0, classify(res.Error, "room not found", "failed to mark messages read")
	}
	return res.RowsAffected, nil
}

func (s *Store) SoftDeleteMessage(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Model(&models.MessageChat{}).Where("id = ?", id).
		UpdateColumn("is_deleted", true).Error
	if err != nil {
		return classify(err, "message not found", "failed to delete message")
	}
	return nil
}
