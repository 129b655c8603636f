package workers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/elastic"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SyncWorker mirrors project writes from the outbox into Elasticsearch.
type SyncWorker struct {
	DB            *gorm.DB
	ES            *es.Client
	Logger        *zap.Logger
	Interval      time.Duration
	RetryInterval time.Duration
	BatchSize     int
	// NewIndexer overrides the bulk indexer; nil builds one over ES.
	NewIndexer func() (esutil.BulkIndexer, error)
}

func (w *SyncWorker) indexer() (esutil.BulkIndexer, error) {
	if w.NewIndexer != nil {
		return w.NewIndexer()
	}
	return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: w.ES, Index: "", FlushBytes: 5 << 20, NumWorkers: 2,
	})
}

func (w *SyncWorker) Run(ctx context.Context) {
	if w.ES != nil {
		if err := elastic.EnsureIndexes(ctx, w.ES); err != nil {
			w.Logger.Error("ensure indexes", zap.Error(err))
		}
	}
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				w.Logger.Error("outbox sync failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claims one batch and indexes it.
func (w *SyncWorker) ProcessOnce(ctx context.Context) error {
	limit := w.BatchSize
	if limit <= 0 {
		limit = 200
	}
	batch, err := FetchOutboxBatch(ctx, w.DB, limit)
	if err != nil {
		return err
	}
	if len(batch.Events) == 0 {
		return nil
	}

	bi, err := w.indexer()
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}

	for _, e := range batch.Events {
		ob := e
		onFail := func(msg string) {
			metrics.FailedEvents.Inc()
			PutDLQ(w.DB, w.Logger, ob, msg)
		}
		if err := w.applyEvent(ctx, bi, ob, onFail); err != nil {
			onFail(err.Error())
			continue
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}
	stats := bi.Stats()
	w.Logger.Info("bulk sync done",
		zap.Int("events", len(batch.Events)),
		zap.Uint64("flushed", stats.NumFlushed),
		zap.Uint64("failed", stats.NumFailed))
	return nil
}

func (w *SyncWorker) applyEvent(ctx context.Context, bi esutil.BulkIndexer, e models.Outbox, onFail func(string)) error {
	switch e.EntityType {
	case models.OutboxEntityProject:
		if e.Op == models.OutboxOpDelete {
			return w.add(ctx, bi, elastic.IdxProjects, e.EntityID.String(), "delete", nil, onFail)
		}
		var p models.Project
		if err := w.DB.WithContext(ctx).First(&p, "id = ?", e.EntityID).Error; err != nil {
			return err
		}
		rating := 0.0
		if p.MentorID != nil {
			var m models.Mentor
			if err := w.DB.WithContext(ctx).First(&m, "id = ?", *p.MentorID).Error; err == nil {
				rating = m.Rating
			}
		}
		doc, err := elastic.BuildProjectDoc(p, rating)
		if err != nil {
			return err
		}
		return w.add(ctx, bi, elastic.IdxProjects, e.EntityID.String(), "index", doc, onFail)
	}
	return fmt.Errorf("unknown entity_type=%s", e.EntityType)
}

func (w *SyncWorker) add(ctx context.Context, bi esutil.BulkIndexer, index, docID, action string, body []byte, onFail func(string)) error {
	item := esutil.BulkIndexerItem{
		Action:     action,
		DocumentID: docID,
		Index:      index,
		OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
			metrics.ProcessedEvents.Inc()
			w.Logger.Debug("synced", zap.String("index", index), zap.String("id", docID), zap.String("action", action))
		},
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			msg := ""
			switch {
			case err != nil:
				msg = err.Error()
			case res.Error.Reason != "":
				msg = fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
			case action == "delete" && res.Status == 404:
				// already gone
				metrics.ProcessedEvents.Inc()
				return
			default:
				msg = fmt.Sprintf("status=%d failed to index", res.Status)
			}
			onFail(msg)
		},
	}

	if len(body) > 0 {
		item.Body = bytes.NewReader(body)
	}
	return bi.Add(ctx, item)
}
