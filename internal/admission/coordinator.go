// Package admission owns the join -> approve/deny -> credential-delivery flow.
// The coordinator composes the room registry, token issuer and notification
// fan-out; it holds no state of its own.
package admission

import (
	"context"
	"log"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/infrastructure/metrics"
	"github.com/greenroomhq/greenroom/internal/infrastructure/ws"
	"github.com/greenroomhq/greenroom/internal/provider"
	"github.com/greenroomhq/greenroom/internal/registry"
	"github.com/greenroomhq/greenroom/internal/token"
)

// Notifier fans a committed state change out to the room's subscribers.
// Implementations must not block the caller and must not fail it.
type Notifier interface {
	Publish(event *ws.Event)
}

// EventPublisher forwards admission events to the audit pipeline.
// All calls are best-effort from the coordinator's point of view.
type EventPublisher interface {
	PublishRoomCreated(ctx context.Context, room *domain.Room, cfg domain.RoomConfig) error
	PublishJoinRequested(ctx context.Context, req *domain.JoinRequest) error
	PublishDecision(ctx context.Context, req *domain.JoinRequest) error
	PublishQueueCleared(ctx context.Context, roomID string, dropped int) error
}

type Coordinator struct {
	registry  *registry.Registry
	issuer    *token.Issuer
	notifier  Notifier
	publisher EventPublisher            // nil when the broker is disabled
	approver  provider.KnockingApprover // nil when the provider lacks the capability
}

func NewCoordinator(
	reg *registry.Registry,
	issuer *token.Issuer,
	notifier Notifier,
	publisher EventPublisher,
	approver provider.KnockingApprover,
) *Coordinator {
	return &Coordinator{
		registry:  reg,
		issuer:    issuer,
		notifier:  notifier,
		publisher: publisher,
		approver:  approver,
	}
}

// Room returns a snapshot of a live room. Expired rooms report
// domain.ErrRoomExpired, unknown rooms domain.ErrRoomNotFound.
func (c *Coordinator) Room(roomID string) (*domain.Room, error) {
	return c.registry.GetRoom(roomID)
}

// CreateMeetingResult carries everything the host needs to hand out: their own
// credential and the shared participant entry point.
type CreateMeetingResult struct {
	Room             *domain.Room
	HostToken        *domain.AccessToken
	ParticipantToken *domain.AccessToken
	HostURL          string
	ParticipantURL   string
}

// CreateMeeting provisions a room and mints the host token plus the
// participant template token. Atomic from the caller's perspective: if either
// token cannot be issued the room record is rolled back and no meeting exists.
func (c *Coordinator) CreateMeeting(ctx context.Context, cfg domain.RoomConfig) (*CreateMeetingResult, error) {
	room, err := c.registry.CreateRoom(ctx, cfg)
	if err != nil {
		metrics.MeetingCreateFailures.Inc()
		return nil, err
	}

	hostToken, err := c.issuer.Issue(ctx, room, domain.RoleHost, cfg.TTL, "")
	if err != nil {
		c.registry.Remove(room.ID)
		metrics.MeetingCreateFailures.Inc()
		return nil, err
	}

	participantToken, err := c.issuer.Issue(ctx, room, domain.RoleParticipant, cfg.TTL, "")
	if err != nil {
		c.registry.Remove(room.ID)
		metrics.MeetingCreateFailures.Inc()
		return nil, err
	}

	metrics.MeetingsCreated.Inc()
	metrics.TokensIssued.WithLabelValues(string(domain.RoleHost)).Inc()
	metrics.TokensIssued.WithLabelValues(string(domain.RoleParticipant)).Inc()

	if c.publisher != nil {
		if err := c.publisher.PublishRoomCreated(ctx, room, cfg); err != nil {
			log.Printf("Error publishing room created: %v", err)
		}
	}

	return &CreateMeetingResult{
		Room:             room,
		HostToken:        hostToken,
		ParticipantToken: participantToken,
		HostURL:          room.JoinURL + "?t=" + hostToken.Credential,
		ParticipantURL:   room.JoinURL + "?t=" + participantToken.Credential,
	}, nil
}

// RequestJoin appends a pending entry to the room's waiting queue and informs
// the room's subscribers. The returned request carries the id the participant
// needs later; display names are not unique within a room.
func (c *Coordinator) RequestJoin(ctx context.Context, roomID, displayName string) (*domain.JoinRequest, error) {
	req, err := c.registry.Enqueue(roomID, displayName)
	if err != nil {
		return nil, err
	}

	metrics.JoinRequests.Inc()
	c.notifier.Publish(ws.NewJoinRequested(req))

	if c.publisher != nil {
		if err := c.publisher.PublishJoinRequested(ctx, req); err != nil {
			log.Printf("Error publishing join request: %v", err)
		}
	}

	return req, nil
}

// WaitingList returns a snapshot of the room's pending requests in arrival
// order.
func (c *Coordinator) WaitingList(roomID string) ([]domain.JoinRequest, error) {
	return c.registry.List(roomID)
}

// Admit approves a pending request and mints the participant's personal
// credential. The token is issued before the queue entry is resolved so the
// slow provider call never runs under the room lock and the resolve stays the
// single serialization point: of two concurrent admits exactly one wins, the
// loser's unreferenced credential simply lapses.
func (c *Coordinator) Admit(ctx context.Context, roomID, requestID string) (*domain.AccessToken, error) {
	req, err := c.registry.GetRequest(roomID, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Pending() {
		return nil, domain.ErrAlreadyDecided
	}

	room, err := c.registry.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	participantToken, err := c.issuer.Issue(ctx, room, domain.RoleParticipant, room.Remaining(time.Now()), req.DisplayName)
	if err != nil {
		return nil, err
	}

	resolved, err := c.registry.Resolve(roomID, requestID, domain.StateApproved)
	if err != nil {
		return nil, err
	}

	// The locally issued token is the authoritative grant; provider-side
	// knocking approval is a courtesy for already-connected clients.
	if c.approver != nil {
		if err := c.approver.ApproveKnocking(ctx, roomID, requestID); err != nil {
			log.Printf("Knocking approval failed for request %s in room %s: %v", requestID, roomID, err)
		}
	}

	metrics.Decisions.WithLabelValues(string(domain.StateApproved)).Inc()
	metrics.TokensIssued.WithLabelValues(string(domain.RoleParticipant)).Inc()
	c.notifier.Publish(ws.NewAdmitted(roomID, requestID))

	if c.publisher != nil {
		if err := c.publisher.PublishDecision(ctx, resolved); err != nil {
			log.Printf("Error publishing admit decision: %v", err)
		}
	}

	return participantToken, nil
}

// Deny rejects a pending request. No token is issued. The same display name
// may enqueue again afterwards with a fresh request id; the denied record
// itself is terminal.
func (c *Coordinator) Deny(ctx context.Context, roomID, requestID string) error {
	resolved, err := c.registry.Resolve(roomID, requestID, domain.StateDenied)
	if err != nil {
		return err
	}

	metrics.Decisions.WithLabelValues(string(domain.StateDenied)).Inc()
	c.notifier.Publish(ws.NewDenied(roomID, requestID))

	if c.publisher != nil {
		if err := c.publisher.PublishDecision(ctx, resolved); err != nil {
			log.Printf("Error publishing deny decision: %v", err)
		}
	}

	return nil
}

// ClearRoom empties the waiting queue without touching the room record or any
// issued token. Idempotent.
func (c *Coordinator) ClearRoom(ctx context.Context, roomID string) error {
	dropped, err := c.registry.Clear(roomID)
	if err != nil {
		return err
	}

	metrics.QueueCleared.Inc()
	c.notifier.Publish(ws.NewQueueCleared(roomID, dropped))

	if c.publisher != nil {
		if err := c.publisher.PublishQueueCleared(ctx, roomID, dropped); err != nil {
			log.Printf("Error publishing queue cleared: %v", err)
		}
	}

	return nil
}
