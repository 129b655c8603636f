package models

import (
	"time"

	"gorm.io/datatypes"
)

type JobKind string

const (
	JobCompletionRollback JobKind = "completion_rollback"
	JobMentorRating       JobKind = "mentor_rating_recompute"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ScheduledJob is a durable delayed action. A job is written in the same
// transaction as the state change that needs it and survives restarts.
type ScheduledJob struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	Kind        JobKind        `gorm:"index;not null"`
	Payload     datatypes.JSON
	DueAt       time.Time      `gorm:"index;not null"`
	Status      JobStatus      `gorm:"index;not null"`
	Attempts    int            `gorm:"not null;default:0"`
	LockedUntil *time.Time
	LastError   string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RollbackPayload identifies the exact rejected request a rollback may clear.
type RollbackPayload struct {
	ProjectID  string    `json:"projectId"`
	RequestID  string    `json:"requestId"`
	RejectedAt time.Time `json:"rejectedAt"`
}

type MentorRatingPayload struct {
	MentorID string `json:"mentorId"`
}
