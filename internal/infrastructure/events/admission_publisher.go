package events

import (
	"context"
	"encoding/json"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/infrastructure/contracts"
	"github.com/greenroomhq/greenroom/internal/infrastructure/messaging"
)

// AdmissionPublisher pushes admission lifecycle events onto the broker for the
// audit consumer. Callers treat publish failures as best-effort.
type AdmissionPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewAdmissionPublisher(rabbitmq *messaging.RabbitMQ) *AdmissionPublisher {
	return &AdmissionPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *AdmissionPublisher) PublishRoomCreated(ctx context.Context, room *domain.Room, cfg domain.RoomConfig) error {
	return p.publish(ctx, contracts.EventRoomCreated, domain.NewRoomCreatedLog(room.ID, cfg.TTL, cfg.MaxParticipants))
}

func (p *AdmissionPublisher) PublishJoinRequested(ctx context.Context, req *domain.JoinRequest) error {
	return p.publish(ctx, contracts.EventJoinRequested, domain.NewJoinRequestedLog(req.RoomID, req.ID, req.DisplayName))
}

func (p *AdmissionPublisher) PublishDecision(ctx context.Context, req *domain.JoinRequest) error {
	key := contracts.EventDenied
	if req.State == domain.StateApproved {
		key = contracts.EventAdmitted
	}
	return p.publish(ctx, key, domain.NewDecisionLog(req.RoomID, req.ID, req.State))
}

func (p *AdmissionPublisher) PublishQueueCleared(ctx context.Context, roomID string, dropped int) error {
	return p.publish(ctx, contracts.EventRoomCleared, domain.NewQueueClearedLog(roomID, dropped))
}

func (p *AdmissionPublisher) PublishRoomExpired(ctx context.Context, roomID string, pending int) error {
	return p.publish(ctx, contracts.EventRoomExpired, domain.NewRoomExpiredLog(roomID, pending))
}

func (p *AdmissionPublisher) publish(ctx context.Context, routingKey string, auditLog *domain.AdmissionAuditLog) error {
	payload := messaging.AdmissionEventData{
		Log: *auditLog,
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: auditLog.RoomID,
		Data:   eventJSON,
	})
}
