package ws

import (
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
)

const (
	JoinRequested = "join_request"
	Admitted      = "admitted"
	Denied        = "denied"
	QueueCleared  = "queue_cleared"

	ErrorEvent      = "error"
	SubscribeFailed = "error.subscribe"
)

func NewJoinRequested(req *domain.JoinRequest) *Event {
	return &Event{
		Type:   JoinRequested,
		RoomID: req.RoomID,
		Data: JoinRequestPayload{
			RequestID:   req.ID,
			DisplayName: req.DisplayName,
			RequestedAt: req.RequestedAt.UTC().Format(time.RFC3339),
		},
	}
}

func NewAdmitted(roomID, requestID string) *Event {
	return &Event{
		Type:   Admitted,
		RoomID: roomID,
		Data: DecisionPayload{
			RequestID: requestID,
		},
	}
}

func NewDenied(roomID, requestID string) *Event {
	return &Event{
		Type:   Denied,
		RoomID: roomID,
		Data: DecisionPayload{
			RequestID: requestID,
		},
	}
}

func NewQueueCleared(roomID string, dropped int) *Event {
	return &Event{
		Type:   QueueCleared,
		RoomID: roomID,
		Data: QueueClearedPayload{
			Dropped: dropped,
		},
	}
}

func NewSubscribeFailed(roomID, reason string) *Event {
	return &Event{
		Type:   SubscribeFailed,
		RoomID: roomID,
		Data: ErrorPayload{
			Code:    "SUBSCRIBE_FAILED",
			Message: reason,
			Retry:   false,
		},
	}
}
