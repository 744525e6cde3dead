// Package registry owns the canonical room records and their waiting queues.
// It is the in-memory authoritative store; durability is layered on via the
// audit pipeline, not here.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/provider"
)

type Registry struct {
	provider provider.MeetingProvider

	mu    sync.RWMutex
	rooms map[string]*roomState

	now func() time.Time

	stopReap chan struct{}
	reapOnce sync.Once
}

func New(p provider.MeetingProvider) *Registry {
	return &Registry{
		provider: p,
		rooms:    make(map[string]*roomState),
		now:      time.Now,
		stopReap: make(chan struct{}),
	}
}

// CreateRoom provisions a room with the meeting provider and registers the
// local record with an empty waiting queue. On provider failure nothing is
// registered. The queue exists before this returns, so a join can never race
// a half-created room.
func (r *Registry) CreateRoom(ctx context.Context, cfg domain.RoomConfig) (*domain.Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Network call stays outside any lock.
	provisioned, err := r.provider.CreateRoom(ctx, provider.CreateRoomRequest{
		Privacy:         cfg.Privacy,
		TTL:             cfg.TTL,
		MaxParticipants: cfg.MaxParticipants,
	})
	if err != nil {
		return nil, err
	}

	room, err := domain.NewRoom(provisioned.ID, provisioned.JoinURL, cfg, r.now())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return nil, fmt.Errorf("%w: provider reused room id %s", domain.ErrUpstreamUnavailable, room.ID)
	}
	r.rooms[room.ID] = newRoomState(room)

	return room, nil
}

// GetRoom returns the live room record. An expired room is reported as such
// rather than pretending it does not exist.
func (r *Registry) GetRoom(roomID string) (*domain.Room, error) {
	state, err := r.state(roomID)
	if err != nil {
		return nil, err
	}

	cp := *state.room
	return &cp, nil
}

// Remove drops the room record and its queue. Used for creation rollback and
// by the reaper; removing an unknown room is a no-op.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	delete(r.rooms, roomID)
	r.mu.Unlock()
}

// RoomCount reports how many rooms are currently tracked, expired or not.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) Enqueue(roomID, displayName string) (*domain.JoinRequest, error) {
	state, err := r.state(roomID)
	if err != nil {
		return nil, err
	}
	return state.enqueue(displayName, r.now())
}

func (r *Registry) List(roomID string) ([]domain.JoinRequest, error) {
	state, err := r.state(roomID)
	if err != nil {
		return nil, err
	}
	return state.pending(), nil
}

func (r *Registry) GetRequest(roomID, requestID string) (*domain.JoinRequest, error) {
	state, err := r.state(roomID)
	if err != nil {
		return nil, err
	}
	return state.get(requestID)
}

func (r *Registry) Resolve(roomID, requestID string, decision domain.RequestState) (*domain.JoinRequest, error) {
	state, err := r.state(roomID)
	if err != nil {
		return nil, err
	}
	return state.resolve(requestID, decision, r.now())
}

// Clear empties the room's waiting queue without touching the room record or
// issued tokens. Idempotent. Returns how many pending entries were dropped.
func (r *Registry) Clear(roomID string) (int, error) {
	state, err := r.state(roomID)
	if err != nil {
		return 0, err
	}
	return state.clear(), nil
}

func (r *Registry) state(roomID string) (*roomState, error) {
	r.mu.RLock()
	state, ok := r.rooms[roomID]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if state.room.Expired(r.now()) {
		return nil, domain.ErrRoomExpired
	}
	return state, nil
}

// StartReaper evicts expired rooms' queues on the given interval to bound
// memory. Purely optional: expiry is enforced lazily on every operation
// whether or not the reaper runs.
func (r *Registry) StartReaper(interval time.Duration, onExpired func(roomID string, pending int)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.reapExpired(onExpired)
			case <-r.stopReap:
				return
			}
		}
	}()
}

func (r *Registry) reapExpired(onExpired func(roomID string, pending int)) {
	now := r.now()

	r.mu.Lock()
	var expired []*roomState
	for id, state := range r.rooms {
		if state.room.Expired(now) {
			expired = append(expired, state)
			delete(r.rooms, id)
		}
	}
	r.mu.Unlock()

	if onExpired != nil {
		for _, state := range expired {
			onExpired(state.room.ID, state.pendingCount())
		}
	}
}

func (r *Registry) Close() error {
	r.reapOnce.Do(func() {
		close(r.stopReap)
	})
	return nil
}
