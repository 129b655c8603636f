// Package events publishes workflow domain events for downstream consumers
// such as the notification service. Clients do not subscribe; they poll.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const subjectPrefix = "helpmemake.projects"

const (
	ProjectCreated       = "project.created"
	ProjectDeleted       = "project.deleted"
	ApplicationSubmitted = "application.submitted"
	ApplicationAccepted  = "application.accepted"
	CompletionRequested  = "completion.requested"
	CompletionApproved   = "completion.approved"
	CompletionRejected   = "completion.rejected"
	CompletionRolledBack = "completion.rolled_back"
	ReviewSubmitted      = "review.submitted"
	ProjectFinalized     = "project.finalized"
	RoomOpened           = "room.opened"
	RoomClosed           = "room.closed"
	MessageSent          = "message.sent"
)

type Event struct {
	Type       string    `json:"type"`
	ProjectID  string    `json:"projectId"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Subject returns the NATS subject an event for projectID is published on.
func Subject(projectID, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, projectID, eventType)
}

// Publisher is the sink the workflow emits committed events into.
type Publisher interface {
	Publish(e Event) error
}

type NATSPublisher struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// Connect dials the broker with reconnects enabled.
func Connect(url string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("helpmemake-workflow"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	logger.Info("connected to NATS", zap.String("url", url))
	return nc, nil
}

func NewNATSPublisher(nc *nats.Conn, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{nc: nc, logger: logger.Named("events")}
}

func (p *NATSPublisher) Publish(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := Subject(e.ProjectID, e.Type)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("event published", zap.String("subject", subject))
	return nil
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
