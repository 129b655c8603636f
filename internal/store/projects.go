package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) preloaded(ctx context.Context) *gorm.DB {
	return s.conn(ctx).
		Preload("Applications", func(db *gorm.DB) *gorm.DB {
			return db.Order("applied_at ASC")
		}).
		Preload("CompletionRequest").
		Preload("Reviews")
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	p.Version = 1
	if err := s.conn(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return classify(err, "project not found", "failed to create project")
	}
	return nil
}

// GetProject loads the project aggregate: applications, completion request
// and reviews.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.preloaded(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, classify(err, "project not found", "failed to load project")
	}
	return &p, nil
}

// SaveProject writes the project's own columns if nobody saved it since it
// was loaded, and bumps its version. Child rows are written separately in the
// same transaction.
func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	now := s.now()
	res := s.conn(ctx).Model(&models.Project{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"status":             p.Status,
			"mentor_id":          p.MentorID,
			"start_date":         p.StartDate,
			"actual_end_date":    p.ActualEndDate,
			"negotiated_price":   p.NegotiatedPrice,
			"expected_duration":  p.ExpectedDuration,
			"applications_count": p.ApplicationsCount,
			"version":            p.Version + 1,
			"updated_at":         now,
		})
	if res.Error != nil {
		return classify(res.Error, "project not found", "failed to save project")
	}
	if res.RowsAffected == 0 {
		return ErrStaleProject
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

// DeleteProject removes the project and its children if it is still at the
// loaded version.
func (s *Store) DeleteProject(ctx context.Context, p *models.Project) error {
	db := s.conn(ctx)
	for _, child := range []any{&models.Application{}, &models.CompletionRequest{}, &models.Review{}} {
		if err := db.Where("project_id = ?", p.ID).Delete(child).Error; err != nil {
			return classify(err, "project not found", "failed to delete project")
		}
	}
	res := db.Where("id = ? AND version = ?", p.ID, p.Version).Delete(&models.Project{})
	if res.Error != nil {
		return classify(res.Error, "project not found", "failed to delete project")
	}
	if res.RowsAffected == 0 {
		return ErrStaleProject
	}
	return nil
}

// IncrementViews bumps the advisory view counter without touching the
// version.
func (s *Store) IncrementViews(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Model(&models.Project{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return classify(err, "project not found", "failed to count view")
	}
	return nil
}

func (s *Store) ListProjectsByLearner(ctx context.Context, learnerID uuid.UUID) ([]models.Project, error) {
	var items []models.Project
	if err := s.preloaded(ctx).Where("learner_id = ?", learnerID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, classify(err, "project not found", "failed to list projects")
	}
	return items, nil
}

func (s *Store) ListProjectsByMentor(ctx context.Context, mentorID uuid.UUID) ([]models.Project, error) {
	var items []models.Project
	if err := s.preloaded(ctx).Where("mentor_id = ?", mentorID).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, classify(err, "project not found", "failed to list projects")
	}
	return items, nil
}

// ---------------- applications ----------------

func (s *Store) CreateApplication(ctx context.Context, a *models.Application) error {
	if err := s.conn(ctx).Create(a).Error; err != nil {
		return classify(err, "application not found", "failed to create application")
	}
	return nil
}

func (s *Store) SetApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	err := s.conn(ctx).Model(&models.Application{}).Where("id = ?", id).
		Updates(map[string]any{"application_status": status, "updated_at": s.now()}).Error
	if err != nil {
		return classify(err, "application not found", "failed to update application")
	}
	return nil
}

// RejectPendingApplications rejects every pending application of the project
// except keep and reports how many changed.
func (s *Store) RejectPendingApplications(ctx context.Context, projectID, keep uuid.UUID) (int64, error) {
	res := s.conn(ctx).Model(&models.Application{}).
		Where("project_id = ? AND id <> ? AND application_status = ?", projectID, keep, models.ApplicationPending).
		Updates(map[string]any{"application_status": models.ApplicationRejected, "updated_at": s.now()})
	if res.Error != nil {
		return 0, classify(res.Error, "application not found", "failed to reject applications")
	}
	return res.RowsAffected, nil
}

// ---------------- completion requests ----------------

// ReplaceCompletionRequest makes cr the project's only completion request.
func (s *Store) ReplaceCompletionRequest(ctx context.Context, cr *models.CompletionRequest) error {
	if err := s.ClearCompletionRequest(ctx, cr.ProjectID); err != nil {
		return err
	}
	if err := s.conn(ctx).Create(cr).Error; err != nil {
		return classify(err, "completion request not found", "failed to create completion request")
	}
	return nil
}

func (s *Store) SaveCompletionRequest(ctx context.Context, cr *models.CompletionRequest) error {
	if err := s.conn(ctx).Save(cr).Error; err != nil {
		return classify(err, "completion request not found", "failed to save completion request")
	}
	return nil
}

func (s *Store) ClearCompletionRequest(ctx context.Context, projectID uuid.UUID) error {
	if err := s.conn(ctx).Where("project_id = ?", projectID).Delete(&models.CompletionRequest{}).Error; err != nil {
		return classify(err, "completion request not found", "failed to clear completion request")
	}
	return nil
}

// ---------------- reviews ----------------

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	if err := s.conn(ctx).Create(r).Error; err != nil {
		return classify(err, "review not found", "failed to save review")
	}
	return nil
}

// MentorRating averages the learner-side review ratings of every project
// assigned to the mentor.
func (s *Store) MentorRating(ctx context.Context, mentorID uuid.UUID) (float64, int64, error) {
	var row struct {
		AvgRating float64
		Total     int64
	}
	err := s.conn(ctx).Table("reviews").
		Select("COALESCE(AVG(reviews.rating), 0) AS avg_rating, COUNT(*) AS total").
		Joins("JOIN projects ON projects.id = reviews.project_id").
		Where("projects.mentor_id = ? AND reviews.side = ?", mentorID, models.RoleLearner).
		Scan(&row).Error
	if err != nil {
		return 0, 0, classify(err, "mentor not found", "failed to aggregate mentor rating")
	}
	return row.AvgRating, row.Total, nil
}
