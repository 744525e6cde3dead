package registry

import (
	"sync"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
)

// roomState couples a room record with its waiting queue. The mutex serializes
// queue mutations for this room only; different rooms never contend.
type roomState struct {
	room *domain.Room

	mu sync.Mutex
	// Insertion-ordered. Decided entries stay in place so a later Resolve on
	// them reports AlreadyDecided; the pending view filters them out.
	requests []*domain.JoinRequest
}

func newRoomState(room *domain.Room) *roomState {
	return &roomState{
		room:     room,
		requests: make([]*domain.JoinRequest, 0, 8),
	}
}

func (s *roomState) enqueue(displayName string, now time.Time) (*domain.JoinRequest, error) {
	req, err := domain.NewJoinRequest(s.room.ID, displayName, now)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	return snapshot(req), nil
}

// pending returns a consistent copy of the undecided entries in arrival order.
func (s *roomState) pending() []domain.JoinRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.JoinRequest, 0, len(s.requests))
	for _, req := range s.requests {
		if req.Pending() {
			out = append(out, *req)
		}
	}
	return out
}

func (s *roomState) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, req := range s.requests {
		if req.Pending() {
			n++
		}
	}
	return n
}

func (s *roomState) get(requestID string) (*domain.JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range s.requests {
		if req.ID == requestID {
			return snapshot(req), nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (s *roomState) resolve(requestID string, decision domain.RequestState, now time.Time) (*domain.JoinRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range s.requests {
		if req.ID != requestID {
			continue
		}
		if err := req.Decide(decision, now); err != nil {
			return nil, err
		}
		return snapshot(req), nil
	}
	return nil, domain.ErrRequestNotFound
}

// clear drops pending entries and reports how many were dropped. Decided
// entries are gone from the pending view already and are dropped too, so a
// cleared queue starts from scratch.
func (s *roomState) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for _, req := range s.requests {
		if req.Pending() {
			dropped++
		}
	}
	s.requests = s.requests[:0]
	return dropped
}

func snapshot(req *domain.JoinRequest) *domain.JoinRequest {
	cp := *req
	if req.DecidedAt != nil {
		t := *req.DecidedAt
		cp.DecidedAt = &t
	}
	return &cp
}
