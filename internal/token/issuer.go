// Package token mints role-scoped, time-bounded access credentials through
// the meeting provider. Tokens are never cached or reused; re-issuing with a
// fresh expiry is the only renewal path.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/provider"
)

type Issuer struct {
	provider provider.MeetingProvider
	now      func() time.Time
}

func NewIssuer(p provider.MeetingProvider) *Issuer {
	return &Issuer{
		provider: p,
		now:      time.Now,
	}
}

// Issue mints a fresh credential for the room scoped to role. The ttl is
// clamped to the room's remaining lifetime rather than failing: a token must
// never outlive its room. An expired room cannot be issued for at all.
func (i *Issuer) Issue(ctx context.Context, room *domain.Room, role domain.Role, ttl time.Duration, displayName string) (*domain.AccessToken, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", domain.ErrInvalidInput)
	}

	now := i.now()
	if room.Expired(now) {
		return nil, domain.ErrRoomExpired
	}

	if remaining := room.Remaining(now); ttl > remaining {
		ttl = remaining
	}

	credential, err := i.provider.IssueCredential(ctx, provider.CredentialRequest{
		RoomID:      room.ID,
		Owner:       role.Owner(),
		TTL:         ttl,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, err
	}

	return &domain.AccessToken{
		RoomID:     room.ID,
		Role:       role,
		ExpiresAt:  now.Add(ttl),
		Credential: credential,
	}, nil
}
