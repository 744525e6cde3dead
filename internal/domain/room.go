package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	PrivacyPrivate = "private"
	PrivacyPublic  = "public"

	DefaultRoomTTL         = time.Hour
	DefaultMaxParticipants = 20
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomExpired         = errors.New("room expired")
	ErrRequestNotFound     = errors.New("request not found")
	ErrAlreadyDecided      = errors.New("request already decided")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrInvalidInput        = errors.New("invalid input")
)

// RoomConfig holds the caller-facing knobs for room creation.
type RoomConfig struct {
	Privacy         string
	TTL             time.Duration
	MaxParticipants int
}

func (c *RoomConfig) Validate() error {
	if c.Privacy != PrivacyPrivate && c.Privacy != PrivacyPublic {
		return fmt.Errorf("%w: privacy must be %q or %q", ErrInvalidInput, PrivacyPrivate, PrivacyPublic)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrInvalidInput)
	}
	if c.MaxParticipants <= 0 {
		return fmt.Errorf("%w: max participants must be positive", ErrInvalidInput)
	}
	return nil
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Privacy:         PrivacyPrivate,
		TTL:             DefaultRoomTTL,
		MaxParticipants: DefaultMaxParticipants,
	}
}

type Room struct {
	ID              string    `json:"id"`
	JoinURL         string    `json:"joinUrl"`
	Privacy         string    `json:"privacy"`
	MaxParticipants int       `json:"maxParticipants"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

func NewRoom(id, joinURL string, cfg RoomConfig, now time.Time) (*Room, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: room id is required", ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Room{
		ID:              id,
		JoinURL:         joinURL,
		Privacy:         cfg.Privacy,
		MaxParticipants: cfg.MaxParticipants,
		CreatedAt:       now,
		ExpiresAt:       now.Add(cfg.TTL),
	}, nil
}

// Expired reports whether the room's lifetime has elapsed. Expiry is advisory:
// every operation that references a room checks it lazily.
func (r *Room) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Remaining returns how much of the room's lifetime is left at now.
func (r *Room) Remaining(now time.Time) time.Duration {
	return r.ExpiresAt.Sub(now)
}
