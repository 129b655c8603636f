package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ---------------- PROJECTS ----------------
type Project struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	LearnerID         uuid.UUID          `gorm:"type:uuid;index;not null" json:"learnerId"`
	MentorID          *uuid.UUID         `gorm:"type:uuid;index" json:"mentorId"`
	Name              string             `gorm:"not null" json:"name"`
	ShortDescription  string             `json:"shortDescription"`
	FullDescription   string             `gorm:"type:text" json:"fullDescription"`
	Category          string             `gorm:"index" json:"category"`
	TechStack         datatypes.JSON     `json:"techStack"` // []string
	OpeningPrice      float64            `json:"openingPrice"`
	NegotiatedPrice   *float64           `json:"negotiatedPrice"`
	ExpectedDuration  string             `json:"expectedDuration"`
	Status            ProjectStatus      `gorm:"index;not null" json:"status"`
	StartDate         *time.Time         `json:"startDate"`
	ActualEndDate     *time.Time         `json:"actualEndDate"`
	ViewCount         int                `gorm:"not null;default:0" json:"viewCount"`
	ApplicationsCount int                `gorm:"not null;default:0" json:"applicationsCount"`
	Version           int64              `gorm:"not null" json:"version"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Applications      []Application      `gorm:"foreignKey:ProjectID" json:"applications"`
	CompletionRequest *CompletionRequest `gorm:"foreignKey:ProjectID" json:"completionRequest"`
	Reviews           []Review           `gorm:"foreignKey:ProjectID" json:"reviews"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Review returns the review submitted by side, or nil.
func (p *Project) Review(side Role) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].Side == side {
			return &p.Reviews[i]
		}
	}
	return nil
}

// Application returns the application with the given id, or nil.
func (p *Project) Application(id uuid.UUID) *Application {
	for i := range p.Applications {
		if p.Applications[i].ID == id {
			return &p.Applications[i]
		}
	}
	return nil
}

// PartyID returns the profile id that plays role on this project.
func (p *Project) PartyID(role Role) (uuid.UUID, bool) {
	switch role {
	case RoleLearner:
		return p.LearnerID, true
	case RoleMentor:
		if p.MentorID == nil {
			return uuid.Nil, false
		}
		return *p.MentorID, true
	default:
		return uuid.Nil, false
	}
}

// ---------------- APPLICATIONS ----------------
type Application struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID         uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_application_project_mentor,priority:1" json:"projectId"`
	MentorID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:ux_application_project_mentor,priority:2" json:"mentorId"`
	ProposedPrice     float64           `json:"proposedPrice"`
	CoverLetter       string            `gorm:"type:text" json:"coverLetter"`
	EstimatedDuration string            `json:"estimatedDuration"`
	ApplicationStatus ApplicationStatus `gorm:"index;not null" json:"applicationStatus"`
	AppliedAt         time.Time         `json:"appliedAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ---------------- COMPLETION REQUESTS ----------------
// At most one row per project; a cleared request is a deleted row.
type CompletionRequest struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"projectId"`
	From         Role          `gorm:"column:requested_by;not null" json:"from"`
	Type         RequestType   `gorm:"not null" json:"type"`
	Status       RequestStatus `gorm:"index;not null" json:"status"`
	RequestedAt  time.Time     `json:"requestedAt"`
	ApprovedAt   *time.Time    `json:"approvedAt"`
	RejectedAt   *time.Time    `json:"rejectedAt"`
	LearnerNotes string        `gorm:"type:text" json:"learnerNotes"`
	MentorNotes  string        `gorm:"type:text" json:"mentorNotes"`
}

func (c *CompletionRequest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SetNotes attaches notes on behalf of side.
func (c *CompletionRequest) SetNotes(side Role, notes string) {
	switch side {
	case RoleLearner:
		c.LearnerNotes = notes
	case RoleMentor:
		c.MentorNotes = notes
	}
}

// ---------------- REVIEWS ----------------
type Review struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:ux_review_project_side,priority:1" json:"projectId"`
	Side       Role           `gorm:"not null;uniqueIndex:ux_review_project_side,priority:2" json:"side"`
	Rating     float64        `gorm:"not null" json:"rating"`
	Breakdown  datatypes.JSON `json:"breakdown"` // ReviewBreakdown
	Comment    string         `gorm:"type:text" json:"comment"`
	ReviewDate time.Time      `json:"reviewDate"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReviewBreakdown holds the five 1-5 scores a review is averaged from.
type ReviewBreakdown struct {
	Communication   int `json:"communication"`
	Expertise       int `json:"expertise"`
	Timeliness      int `json:"timeliness"`
	Professionalism int `json:"professionalism"`
	Overall         int `json:"overall"`
}

// Scores returns the breakdown in a fixed order.
func (b ReviewBreakdown) Scores() []int {
	return []int{b.Communication, b.Expertise, b.Timeliness, b.Professionalism, b.Overall}
}

// ---------------- OUTBOX (for sync events) ----------------
const (
	OutboxEntityProject = "project"

	OutboxOpUpsert = "UPSERT"
	OutboxOpDelete = "DELETE"
)

type Outbox struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	EntityType string    `gorm:"index;not null"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null"`
	Op         string    `gorm:"not null"` // UPSERT | DELETE
	Payload    datatypes.JSON
	CreatedAt  time.Time
	Processed  bool `gorm:"default:false"`
}
