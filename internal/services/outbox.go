package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AddOutboxEvent inserts one sync event. Pass the transaction that wrote the
// entity so the event commits with it.
func AddOutboxEvent(tx *gorm.DB, entityType string, entityID uuid.UUID, op string, payload any) error {
	var data []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return apperr.Internal("failed to encode outbox payload", errors.WithStack(err))
		}
		data = encoded
	}

	event := models.Outbox{
		EntityType: entityType,
		EntityID:   entityID,
		Op:         op,
		Payload:    datatypes.JSON(data),
	}
	if err := tx.Create(&event).Error; err != nil {
		return apperr.Internal("failed to create outbox event", errors.Wrapf(err, "outbox %s %s", entityType, entityID))
	}
	return nil
}

// AddBatchOutboxEvents inserts one event per id. Used when a change outside
// the entity (a mentor's rating) alters several indexed documents.
func AddBatchOutboxEvents(tx *gorm.DB, entityType string, op string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	batch := make([]models.Outbox, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, models.Outbox{EntityType: entityType, EntityID: id, Op: op})
	}
	if err := tx.Create(&batch).Error; err != nil {
		return apperr.Internal("failed to create outbox events", errors.Wrapf(err, "outbox batch %s", entityType))
	}
	return nil
}

// syncProject records a project change for the search index. It writes
// nothing when no sync worker drains the outbox.
func (o *Orchestrator) syncProject(tx *gorm.DB, p *models.Project, op string) error {
	if !o.outbox {
		return nil
	}
	var payload any
	if op != models.OutboxOpDelete {
		payload = outboxPayload(p)
	}
	return AddOutboxEvent(tx, models.OutboxEntityProject, p.ID, op, payload)
}

func (o *Orchestrator) syncProjects(tx *gorm.DB, ids []uuid.UUID) error {
	if !o.outbox {
		return nil
	}
	return AddBatchOutboxEvents(tx, models.OutboxEntityProject, models.OutboxOpUpsert, ids)
}

type projectOutboxPayload struct {
	Status  models.ProjectStatus `json:"status"`
	Version int64                `json:"version"`
}

func outboxPayload(p *models.Project) projectOutboxPayload {
	return projectOutboxPayload{Status: p.Status, Version: p.Version}
}
