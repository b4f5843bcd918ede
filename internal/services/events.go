package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
)

// Audit actions published for account lifecycle changes.
const (
	AuditUserRegistered  = "user.registered"
	AuditUserDeleted     = "user.deleted"
	AuditImportCompleted = "import.completed"
)

// Auditor publishes account lifecycle events. Flows treat publishing as
// fire-and-forget; a failed publish never fails the request.
type Auditor interface {
	Publish(ctx context.Context, action, subject string)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditPublisher publishes audit events to Kafka.
type AuditPublisher struct {
	writer KafkaWriter
}

// NewAuditPublisher creates an AuditPublisher. A nil writer disables
// publishing, so the service runs without a broker in development.
func NewAuditPublisher(writer KafkaWriter) *AuditPublisher {
	return &AuditPublisher{writer: writer}
}

// Publish sends one audit event. Failures are logged and swallowed.
func (p *AuditPublisher) Publish(ctx context.Context, action, subject string) {
	if p.writer == nil {
		logger.Log.Debugw("audit writer not configured, skipping publish", "action", action)
		return
	}

	event := models.AuditEvent{
		EventID:   uuid.NewString(),
		Action:    action,
		Subject:   subject,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal audit event", "action", action, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish audit event", "action", action, "error", err)
		return
	}

	logger.Log.Infow("audit event published", "action", action, "subject", subject)
}
