package models

import (
	"time"

	"github.com/google/uuid"
)

// DLQ holds outbox events the sync worker could not index. A failed retry
// keeps the row with its latest error until a later retry resolves it.
type DLQ struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OutboxID   int64      `gorm:"index" json:"outboxId"`
	EntityType string     `gorm:"not null" json:"entityType"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null" json:"entityId"`
	Op         string     `gorm:"not null" json:"op"`
	ErrorMsg   string     `gorm:"type:text" json:"error"`
	Payload    []byte     `json:"-"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	CreatedAt  time.Time  `json:"createdAt"`
	RetriedAt  *time.Time `json:"retriedAt"`
	Resolved   bool       `gorm:"index;not null;default:false" json:"resolved"`
}
