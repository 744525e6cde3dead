package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/infrastructure/contracts"
	"github.com/greenroomhq/greenroom/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

type admissionConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.AdmissionAuditRepository
}

// NewAdmissionConsumer drains the admissions queue into the audit store.
// A nil repository means audit persistence is disabled; events are logged and
// acked so the queue does not back up.
func NewAdmissionConsumer(rabbitmq *messaging.RabbitMQ, audit domain.AdmissionAuditRepository) *admissionConsumer {
	return &admissionConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
	}
}

func (c *admissionConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.AdmissionsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			return err
		}

		var payload messaging.AdmissionEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			log.Printf("Failed to unmarshal admission event: %v", err)
			return err
		}

		if c.audit == nil {
			log.Printf("Admission event received (audit store disabled): %s room=%s", payload.Log.EventType, payload.Log.RoomID)
			return nil
		}

		return c.audit.Log(ctx, &payload.Log)
	})
}
