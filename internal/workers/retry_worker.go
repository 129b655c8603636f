package workers

import (
	"context"
	"sync"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (w *SyncWorker) RetryDLQ(ctx context.Context) {
	interval := w.RetryInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RetryOnce(ctx); err != nil {
				w.Logger.Error("DLQ retry failed", zap.Error(err))
			}
		}
	}
}

// RetryOnce replays unresolved DLQ rows and reports how many were resolved.
// A row that fails again stays unresolved with its latest error.
func (w *SyncWorker) RetryOnce(ctx context.Context) (int, error) {
	var dlqs []models.DLQ
	if err := w.DB.WithContext(ctx).Where("resolved = ?", false).Order("id ASC").Limit(50).Find(&dlqs).Error; err != nil {
		return 0, err
	}

	resolved := 0
	for _, d := range dlqs {
		ob := models.Outbox{
			ID:         d.OutboxID,
			EntityType: d.EntityType,
			EntityID:   d.EntityID,
			Op:         d.Op,
			Payload:    d.Payload,
		}
		w.Logger.Info("retrying DLQ", zap.Int64("dlq_id", d.ID), zap.String("entity", d.EntityType), zap.String("op", d.Op))

		var (
			mu      sync.Mutex
			failure string
		)
		onFail := func(msg string) {
			mu.Lock()
			failure = msg
			mu.Unlock()
		}

		bi, err := w.indexer()
		if err != nil {
			return resolved, err
		}
		if err := w.applyEvent(ctx, bi, ob, onFail); err != nil {
			onFail(err.Error())
		}
		if err := bi.Close(ctx); err != nil {
			onFail(err.Error())
		}

		now := time.Now().UTC()
		updates := map[string]any{"retried_at": &now, "attempts": gorm.Expr("attempts + 1")}
		mu.Lock()
		if failure == "" {
			updates["resolved"] = true
		} else {
			updates["error_msg"] = failure
		}
		mu.Unlock()
		if err := w.DB.WithContext(ctx).Model(&models.DLQ{}).Where("id = ?", d.ID).Updates(updates).Error; err != nil {
			return resolved, err
		}
		if _, ok := updates["resolved"]; ok {
			resolved++
			metrics.ProcessedEvents.Inc()
			w.Logger.Info("DLQ resolved", zap.Int64("dlq_id", d.ID))
		}
	}
	return resolved, nil
}
