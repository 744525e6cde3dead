// Package provider defines the contract the coordinator needs from the
// external meeting provider, plus the shipped HTTP implementation.
package provider

import (
	"context"
	"time"
)

// CreateRoomRequest describes the provider-side room to provision.
type CreateRoomRequest struct {
	Privacy         string
	TTL             time.Duration
	MaxParticipants int
}

// ProviderRoom is the provider's view of a provisioned room.
type ProviderRoom struct {
	ID      string
	JoinURL string
}

// CredentialRequest asks the provider to mint a meeting credential. Owner
// controls the capability flags attached to it: owners get full room control,
// non-owners connect with camera/mic off and are subject to knocking.
type CredentialRequest struct {
	RoomID      string
	Owner       bool
	TTL         time.Duration
	DisplayName string
}

// MeetingProvider is the external collaborator that owns the actual rooms and
// credentials. Calls go over the network and must be treated as slow; every
// method honors ctx deadlines.
type MeetingProvider interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (ProviderRoom, error)
	IssueCredential(ctx context.Context, req CredentialRequest) (string, error)
}

// KnockingApprover is an optional provider capability: server-side approval of
// a participant already connected to the provider room in a knocking state.
// Callers treat failures as non-fatal since the locally issued token is the
// authoritative grant.
type KnockingApprover interface {
	ApproveKnocking(ctx context.Context, roomID, participantRef string) error
}
