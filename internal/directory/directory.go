// Package directory reads the account service's user, learner and mentor
// records. The only write it performs is the mentor's aggregate rating.
package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"gorm.io/gorm"
)

type Directory struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		return nil, lookupError(err, "user not found")
	}
	return &u, nil
}

func (d *Directory) LearnerByUserID(ctx context.Context, userID uuid.UUID) (*models.Learner, error) {
	var l models.Learner
	if err := d.db.WithContext(ctx).First(&l, "user_id = ?", userID).Error; err != nil {
		return nil, lookupError(err, "learner profile not found")
	}
	return &l, nil
}

func (d *Directory) MentorByUserID(ctx context.Context, userID uuid.UUID) (*models.Mentor, error) {
	var m models.Mentor
	if err := d.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, lookupError(err, "mentor profile not found")
	}
	return &m, nil
}

func (d *Directory) GetLearner(ctx context.Context, id uuid.UUID) (*models.Learner, error) {
	var l models.Learner
	if err := d.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "learner profile not found")
	}
	return &l, nil
}

func (d *Directory) GetMentor(ctx context.Context, id uuid.UUID) (*models.Mentor, error) {
	var m models.Mentor
	if err := d.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "mentor profile not found")
	}
	return &m, nil
}

// UpdateMentorRating overwrites the mentor's aggregate rating.
func (d *Directory) UpdateMentorRating(ctx context.Context, mentorID uuid.UUID, rating float64, count int) error {
	res := d.db.WithContext(ctx).Model(&models.Mentor{}).Where("id = ?", mentorID).
		Updates(map[string]any{"rating": rating, "rating_count": count})
	if res.Error != nil {
		return apperr.Internal("failed to update mentor rating", errors.WithStack(res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("mentor profile not found")
	}
	return nil
}

func lookupError(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.CodeNotFound, notFound, err)
	}
	return apperr.Internal("directory lookup failed", errors.WithStack(err))
}
