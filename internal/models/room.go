package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRoom is the chat channel of a project. Party ids are profile ids;
// message sender/receiver ids are user ids.
type MessageRoom struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"projectId"`
	LearnerID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"learnerId"`
	MentorID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"mentorId"`
	Status              RoomStatus `gorm:"index;not null" json:"status"`
	LearnerUnread       int        `gorm:"not null;default:0" json:"learnerUnreadCount"`
	MentorUnread        int        `gorm:"not null;default:0" json:"mentorUnreadCount"`
	LastMessage         string     `json:"lastMessage"`
	LastMessageSenderID *uuid.UUID `gorm:"type:uuid" json:"lastMessageSenderId"`
	LastMessageAt       *time.Time `json:"lastMessageAt"`
	LearnerWallpaper    string     `json:"learnerWallpaper"`
	MentorWallpaper     string     `json:"mentorWallpaper"`
	TotalMessages       int        `gorm:"not null;default:0" json:"totalMessages"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (r *MessageRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PartyID returns the profile id playing role in the room.
func (r *MessageRoom) PartyID(role Role) uuid.UUID {
	if role == RoleMentor {
		return r.MentorID
	}
	return r.LearnerID
}

// Unread returns the unread counter of side.
func (r *MessageRoom) Unread(side Role) int {
	if side == RoleMentor {
		return r.MentorUnread
	}
	return r.LearnerUnread
}

type MessageChat struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID     uuid.UUID   `gorm:"type:uuid;not null;index:idx_chat_room_created,priority:1" json:"roomId"`
	SenderID   uuid.UUID   `gorm:"type:uuid;not null" json:"senderId"`
	ReceiverID uuid.UUID   `gorm:"type:uuid;not null;index" json:"receiverId"`
	Kind       MessageKind `gorm:"not null" json:"messageType"`
	Body       string      `gorm:"type:text" json:"message"`
	ImageURL   string      `json:"imageUrl,omitempty"`
	IsRead     bool        `gorm:"not null;default:false" json:"isRead"`
	ReadAt     *time.Time  `json:"readAt"`
	IsDeleted  bool        `gorm:"not null;default:false" json:"isDeleted"`
	CreatedAt  time.Time   `gorm:"index:idx_chat_room_created,priority:2" json:"createdAt"`
}

func (m *MessageChat) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
