package db

import (
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed inserts a demo learner and two demo mentors into an empty directory.
func Seed(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("directory already populated, skipping seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		learnerUser := models.User{Name: "Demo Learner", Email: "learner@example.com", Role: models.RoleLearner}
		if err := tx.Create(&learnerUser).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Learner{UserID: learnerUser.ID}).Error; err != nil {
			return err
		}

		for _, u := range []models.User{
			{Name: "Demo Mentor A", Email: "mentor.a@example.com", Role: models.RoleMentor},
			{Name: "Demo Mentor B", Email: "mentor.b@example.com", Role: models.RoleMentor},
		} {
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.Mentor{UserID: u.ID}).Error; err != nil {
				return err
			}
		}

		logger.Info("demo directory seeded",
			zap.String("learner_user_id", learnerUser.ID.String()))
		return nil
	})
}
