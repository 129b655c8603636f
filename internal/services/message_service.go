package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"go.uber.org/zap"
)

const (
	maxMessageLength = 2000
	defaultPageSize  = 50
	maxPageSize      = 100
	pollLimit        = 100

	deletedMessageBody = "This message was deleted"
	imageSnapshot      = "📷 Image"
)

type MessagePage struct {
	Messages []models.MessageChat `json:"messages"`
	Page     int                  `json:"page"`
	Limit    int                  `json:"limit"`
	Total    int64                `json:"total"`
	HasMore  bool                 `json:"hasMore"`
}

// SendMessage posts a text message into an open room.
func (o *Orchestrator) SendMessage(ctx context.Context, id Identity, roomID uuid.UUID, body string) (*models.MessageChat, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validation("message is required")
	}
	if utf8.RuneCountInString(body) > maxMessageLength {
		return nil, apperr.Validation("message is too long")
	}
	return o.send(ctx, id, roomID, models.MessageChat{Kind: models.MessageText, Body: body}, body)
}

// SendImageMessage posts an uploaded image, with an optional caption.
func (o *Orchestrator) SendImageMessage(ctx context.Context, id Identity, roomID uuid.UUID, imageURL, caption string) (*models.MessageChat, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, apperr.Validation("image is required")
	}
	caption = strings.TrimSpace(caption)
	if utf8.RuneCountInString(caption) > maxMessageLength {
		return nil, apperr.Validation("caption is too long")
	}
	snapshot := imageSnapshot
	if caption != "" {
		snapshot = caption
	}
	return o.send(ctx, id, roomID, models.MessageChat{Kind: models.MessageImage, Body: caption, ImageURL: imageURL}, snapshot)
}

// CanSend reports whether id may post into the room right now. Callers that
// do work before sending, like storing an upload, check this first.
func (o *Orchestrator) CanSend(ctx context.Context, id Identity, roomID uuid.UUID) error {
	_, err := o.sendableRoom(ctx, id, roomID)
	return err
}

func (o *Orchestrator) sendableRoom(ctx context.Context, id Identity, roomID uuid.UUID) (*roomAccess, error) {
	acc, err := o.enterRoom(ctx, id, roomID)
	if err != nil {
		return nil, err
	}
	if acc.room.Status != models.RoomOpen {
		return nil, apperr.Conflict("room is closed")
	}
	return acc, nil
}

func (o *Orchestrator) send(ctx context.Context, id Identity, roomID uuid.UUID, msg models.MessageChat, snapshot string) (*models.MessageChat, error) {
	acc, err := o.sendableRoom(ctx, id, roomID)
	if err != nil {
		return nil, err
	}
	receiverSide := acc.side.Counterparty()
	receiverID, err := o.partyUserID(ctx, receiverSide, acc.room.PartyID(receiverSide))
	if err != nil {
		return nil, err
	}

	now := o.now()
	msg.RoomID = roomID
	msg.SenderID = id.UserID
	msg.ReceiverID = receiverID
	msg.CreatedAt = now

	err = o.store.WithTx(ctx, func(tx *store.Store) error {
		// The room is re-checked here; a concurrent close wins.
		open, err := tx.RecordMessage(ctx, roomID, receiverSide, truncate(snapshot, 100), id.UserID, now)
		if err != nil {
			return err
		}
		if !open {
			return apperr.Conflict("room is closed")
		}
		return tx.CreateMessage(ctx, &msg)
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.WithLabelValues(string(msg.Kind)).Inc()
	o.logger.Debug("message sent", zap.String("room_id", roomID.String()), zap.String("message_id", msg.ID.String()))
	o.publish([]events.Event{{
		Type:       events.MessageSent,
		ProjectID:  acc.room.ProjectID.String(),
		Data:       map[string]string{"roomId": roomID.String(), "messageId": msg.ID.String(), "receiverId": receiverID.String()},
		OccurredAt: now,
	}})
	return &msg, nil
}

// FetchMessages returns one page of history, oldest to newest within the
// page. Reading marks every message addressed to the caller as read and
// resets the caller's unread counter.
func (o *Orchestrator) FetchMessages(ctx context.Context, id Identity, roomID uuid.UUID, page, limit int) (*MessagePage, error) {
	acc, err := o.enterRoom(ctx, id, roomID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	now := o.now()
	var (
		items []models.MessageChat
		total int64
	)
	err = o.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		items, total, err = tx.ListMessages(ctx, roomID, (page-1)*limit, limit)
		if err != nil {
			return err
		}
		if _, err := tx.MarkRead(ctx, roomID, id.UserID, now); err != nil {
			return err
		}
		return tx.ResetUnread(ctx, roomID, acc.side)
	})
	if err != nil {
		return nil, err
	}

	// newest-first from the store; flip to reading order.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	for i := range items {
		if items[i].ReceiverID == id.UserID && !items[i].IsRead {
			items[i].IsRead = true
			items[i].ReadAt = &now
		}
		mask(&items[i])
	}

	return &MessagePage{
		Messages: items,
		Page:     page,
		Limit:    limit,
		Total:    total,
		HasMore:  int64(page*limit) < total,
	}, nil
}

// CheckNewMessages returns messages created after since, oldest first. It
// does not mark anything read.
func (o *Orchestrator) CheckNewMessages(ctx context.Context, id Identity, roomID uuid.UUID, since time.Time) ([]models.MessageChat, error) {
	if _, err := o.enterRoom(ctx, id, roomID); err != nil {
		return nil, err
	}
	items, err := o.store.MessagesSince(ctx, roomID, since.UTC(), pollLimit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		mask(&items[i])
	}
	return items, nil
}

// DeleteMessage soft-deletes one of the caller's own messages.
func (o *Orchestrator) DeleteMessage(ctx context.Context, id Identity, roomID, messageID uuid.UUID) error {
	if _, err := o.enterRoom(ctx, id, roomID); err != nil {
		return err
	}
	msg, err := o.store.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.RoomID != roomID {
		return apperr.NotFound("message not found")
	}
	if msg.SenderID != id.UserID {
		return apperr.Forbidden("you can only delete your own messages")
	}
	if msg.IsDeleted {
		return nil
	}
	return o.store.SoftDeleteMessage(ctx, messageID)
}

func mask(m *models.MessageChat) {
	if m.IsDeleted {
		m.Body = deletedMessageBody
		m.ImageURL = ""
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
