package db

import (
	"fmt"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Learner{},
		&models.Mentor{},
		&models.Project{},
		&models.Application{},
		&models.CompletionRequest{},
		&models.Review{},
		&models.MessageRoom{},
		&models.MessageChat{},
		&models.ScheduledJob{},
		&models.Outbox{},
		&models.DLQ{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
