package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AdmissionEventType string

const (
	EventRoomCreated   AdmissionEventType = "room_created"
	EventRoomExpired   AdmissionEventType = "room_expired"
	EventJoinRequested AdmissionEventType = "join_requested"
	EventAdmitted      AdmissionEventType = "admitted"
	EventDenied        AdmissionEventType = "denied"
	EventQueueCleared  AdmissionEventType = "queue_cleared"
)

// AdmissionAuditLog is the durable terminal record of an admission decision or
// room lifecycle event. The in-memory queue drops decided entries from its
// pending view; this is where their history lives.
type AdmissionAuditLog struct {
	ID        string             `bson:"_id" json:"id"`
	RoomID    string             `bson:"room_id" json:"roomId"`
	RequestID string             `bson:"request_id,omitempty" json:"requestId,omitempty"`
	EventType AdmissionEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type AdmissionAuditRepository interface {
	Log(ctx context.Context, log *AdmissionAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]AdmissionAuditLog, error)
	GetByEventType(ctx context.Context, eventType AdmissionEventType, from, to time.Time) ([]AdmissionAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRoomCreatedLog(roomID string, ttl time.Duration, maxParticipants int) *AdmissionAuditLog {
	return &AdmissionAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomCreated,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"ttl_seconds":      ttl.Seconds(),
			"max_participants": maxParticipants,
		},
	}
}

func NewJoinRequestedLog(roomID, requestID, displayName string) *AdmissionAuditLog {
	return &AdmissionAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		RequestID: requestID,
		EventType: EventJoinRequested,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"display_name": displayName,
		},
	}
}

func NewDecisionLog(roomID, requestID string, decision RequestState) *AdmissionAuditLog {
	eventType := EventDenied
	if decision == StateApproved {
		eventType = EventAdmitted
	}

	return &AdmissionAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		RequestID: requestID,
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func NewQueueClearedLog(roomID string, dropped int) *AdmissionAuditLog {
	return &AdmissionAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventQueueCleared,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"dropped": dropped,
		},
	}
}

func NewRoomExpiredLog(roomID string, pending int) *AdmissionAuditLog {
	return &AdmissionAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomExpired,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"pending": pending,
		},
	}
}
