package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/greenroomhq/greenroom/internal/infrastructure/validate"
)

type RequestState string

const (
	StatePending  RequestState = "pending"
	StateApproved RequestState = "approved"
	StateDenied   RequestState = "denied"
)

// JoinRequest is a participant's request to enter a room. Its state only ever
// moves pending -> approved or pending -> denied; a decided request never
// becomes pending again.
type JoinRequest struct {
	ID          string       `json:"id"`
	RoomID      string       `json:"roomId"`
	DisplayName string       `json:"displayName"`
	State       RequestState `json:"state"`
	RequestedAt time.Time    `json:"requestedAt"`
	DecidedAt   *time.Time   `json:"decidedAt,omitempty"`
}

func NewJoinRequest(roomID, rawName string, now time.Time) (*JoinRequest, error) {
	validateDisplayName := validate.Compose(
		validate.Required(),
		validate.MinLength(1),
		validate.MaxLength(64),
	)

	if err := validateDisplayName(rawName); err != nil {
		return nil, err
	}

	return &JoinRequest{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		DisplayName: rawName,
		State:       StatePending,
		RequestedAt: now,
	}, nil
}

func (r *JoinRequest) Pending() bool {
	return r.State == StatePending
}

// Decide moves a pending request to a terminal state and stamps DecidedAt.
// Calling it on an already-decided request fails with ErrAlreadyDecided
// regardless of the decision value.
func (r *JoinRequest) Decide(decision RequestState, now time.Time) error {
	if decision != StateApproved && decision != StateDenied {
		return ErrInvalidInput
	}
	if !r.Pending() {
		return ErrAlreadyDecided
	}

	r.State = decision
	r.DecidedAt = &now
	return nil
}
