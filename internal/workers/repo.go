// Outbox claiming and dead-lettering shared by the sync and retry workers.
package workers

import (
	"context"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OutboxBatch struct{ Events []models.Outbox }

// FetchOutboxBatch claims up to limit unprocessed events by marking them
// processed. Failed events go to the DLQ rather than back to the outbox.
func FetchOutboxBatch(ctx context.Context, db *gorm.DB, limit int) (OutboxBatch, error) {
	var evts []models.Outbox
	if db.Dialector.Name() == "postgres" {
		// FOR UPDATE SKIP LOCKED lets several workers share the table
		tx := db.WithContext(ctx).Raw(`
			WITH cte AS (
			  SELECT * FROM outboxes
			  WHERE processed = false
			  ORDER BY id ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED
			)
			UPDATE outboxes SET processed = true
			FROM cte
			WHERE outboxes.id = cte.id
			RETURNING cte.*`, limit).Scan(&evts)
		return OutboxBatch{Events: evts}, tx.Error
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("processed = ?", false).Order("id ASC").Limit(limit).Find(&evts).Error; err != nil {
			return err
		}
		if len(evts) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(evts))
		for _, e := range evts {
			ids = append(ids, e.ID)
		}
		return tx.Model(&models.Outbox{}).Where("id IN ?", ids).Update("processed", true).Error
	})
	return OutboxBatch{Events: evts}, err
}

// PutDLQ inserts a failed outbox event into the DLQ table.
func PutDLQ(db *gorm.DB, logger *zap.Logger, ob models.Outbox, msg string) {
	metrics.DLQEvents.Inc()
	dlq := models.DLQ{
		OutboxID:   ob.ID,
		EntityType: ob.EntityType,
		EntityID:   ob.EntityID,
		Op:         ob.Op,
		ErrorMsg:   msg,
		Payload:    ob.Payload,
		CreatedAt:  time.Now().UTC(),
		Resolved:   false,
	}
	if err := db.Create(&dlq).Error; err != nil {
		logger.Error("failed to insert into DLQ", zap.Int64("outbox_id", ob.ID), zap.Error(err))
		return
	}
	logger.Warn("DLQ record created", zap.Int64("outbox_id", ob.ID), zap.String("reason", msg))
}
