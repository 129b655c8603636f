package elastic

import (
	"encoding/json"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
)

type ProjectDoc struct {
	Name              string    `json:"name"`
	ShortDescription  string    `json:"short_description"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	TechStack         []string  `json:"tech_stack"`
	Status            string    `json:"status"`
	LearnerID         string    `json:"learner_id"`
	MentorID          string    `json:"mentor_id,omitempty"`
	MentorRating      float64   `json:"mentor_rating,omitempty"`
	OpeningPrice      float64   `json:"opening_price"`
	ApplicationsCount int       `json:"applications_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BuildProjectDoc renders p for projects_v1. mentorRating is the assigned
// mentor's aggregate, zero when unassigned.
func BuildProjectDoc(p models.Project, mentorRating float64) ([]byte, error) {
	var stack []string
	_ = json.Unmarshal(p.TechStack, &stack)
	doc := ProjectDoc{
		Name:              p.Name,
		ShortDescription:  p.ShortDescription,
		Description:       p.FullDescription,
		Category:          p.Category,
		TechStack:         stack,
		Status:            string(p.Status),
		LearnerID:         p.LearnerID.String(),
		MentorRating:      mentorRating,
		OpeningPrice:      p.OpeningPrice,
		ApplicationsCount: p.ApplicationsCount,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.MentorID != nil {
		doc.MentorID = p.MentorID.String()
	}
	return json.Marshal(doc)
}
