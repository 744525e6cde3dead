package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/provider"
)

type fakeProvider struct {
	mu      sync.Mutex
	counter int
	fail    bool
}

func (f *fakeProvider) CreateRoom(ctx context.Context, req provider.CreateRoomRequest) (provider.ProviderRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return provider.ProviderRoom{}, fmt.Errorf("%w: provider down", domain.ErrUpstreamUnavailable)
	}

	f.counter++
	id := fmt.Sprintf("room-%d", f.counter)
	return provider.ProviderRoom{ID: id, JoinURL: "https://example.daily.co/" + id}, nil
}

func (f *fakeProvider) IssueCredential(ctx context.Context, req provider.CredentialRequest) (string, error) {
	return "tok", nil
}

func newTestRegistry(t *testing.T) (*Registry, *domain.Room) {
	t.Helper()

	reg := New(&fakeProvider{})
	t.Cleanup(func() { reg.Close() })

	room, err := reg.CreateRoom(context.Background(), domain.DefaultRoomConfig())
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return reg, room
}

func TestCreateRoomProviderFailure(t *testing.T) {
	reg := New(&fakeProvider{fail: true})
	defer reg.Close()

	if _, err := reg.CreateRoom(context.Background(), domain.DefaultRoomConfig()); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if reg.RoomCount() != 0 {
		t.Fatal("no room should be registered after a provider failure")
	}
}

func TestUnknownRoomErrors(t *testing.T) {
	reg := New(&fakeProvider{})
	defer reg.Close()

	if _, err := reg.GetRoom("nope"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := reg.Enqueue("nope", "Alice"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := reg.Clear("nope"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestEnqueueKeepsArrivalOrder(t *testing.T) {
	reg, room := newTestRegistry(t)

	names := []string{"Alice", "Bob", "Carol", "Bob"}
	for _, name := range names {
		if _, err := reg.Enqueue(room.ID, name); err != nil {
			t.Fatalf("enqueue %s: %v", name, err)
		}
	}

	pending, err := reg.List(room.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != len(names) {
		t.Fatalf("expected %d pending, got %d", len(names), len(pending))
	}
	for i, name := range names {
		if pending[i].DisplayName != name {
			t.Fatalf("position %d: expected %q, got %q", i, name, pending[i].DisplayName)
		}
	}
}

func TestConcurrentEnqueueLosesNothing(t *testing.T) {
	reg, room := newTestRegistry(t)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			if _, err := reg.Enqueue(room.ID, fmt.Sprintf("guest-%d", n)); err != nil {
				t.Errorf("enqueue: %v", err)
			}
		}(i)
	}
	wg.Wait()

	pending, err := reg.List(room.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != workers {
		t.Fatalf("expected %d pending, got %d", workers, len(pending))
	}

	seen := make(map[string]bool, workers)
	for _, req := range pending {
		if seen[req.ID] {
			t.Fatalf("duplicate request id %s", req.ID)
		}
		seen[req.ID] = true
	}
}

func TestConcurrentResolveOneWinner(t *testing.T) {
	reg, room := newTestRegistry(t)

	req, err := reg.Enqueue(room.ID, "Alice")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	const racers = 16
	var wins, conflicts int64
	var wg sync.WaitGroup
	wg.Add(racers)

	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			_, err := reg.Resolve(room.ID, req.ID, domain.StateApproved)
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
			case errors.Is(err, domain.ErrAlreadyDecided):
				atomic.AddInt64(&conflicts, 1)
			default:
				t.Errorf("unexpected resolve error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if conflicts != racers-1 {
		t.Fatalf("expected %d conflicts, got %d", racers-1, conflicts)
	}
}

func TestResolveRemovesFromPendingView(t *testing.T) {
	reg, room := newTestRegistry(t)

	first, _ := reg.Enqueue(room.ID, "Alice")
	second, _ := reg.Enqueue(room.ID, "Bob")

	if _, err := reg.Resolve(room.ID, first.ID, domain.StateApproved); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	pending, err := reg.List(room.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("expected only %s pending, got %+v", second.ID, pending)
	}

	// The decided entry is still addressable and still terminal.
	decided, err := reg.GetRequest(room.ID, first.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if decided.State != domain.StateApproved {
		t.Fatalf("expected approved, got %q", decided.State)
	}
	if _, err := reg.Resolve(room.ID, first.ID, domain.StateDenied); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestReenqueueAfterDeny(t *testing.T) {
	reg, room := newTestRegistry(t)

	first, _ := reg.Enqueue(room.ID, "Alice")
	if _, err := reg.Resolve(room.ID, first.ID, domain.StateDenied); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	second, err := reg.Enqueue(room.ID, "Alice")
	if err != nil {
		t.Fatalf("re-enqueue: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("re-enqueue must mint a fresh request id")
	}

	pending, _ := reg.List(room.ID)
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("expected only the fresh request pending, got %+v", pending)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	reg, room := newTestRegistry(t)

	reg.Enqueue(room.ID, "Alice")
	reg.Enqueue(room.ID, "Bob")

	dropped, err := reg.Clear(room.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", dropped)
	}

	dropped, err = reg.Clear(room.ID)
	if err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if dropped != 0 {
		t.Fatalf("expected 0 dropped on second clear, got %d", dropped)
	}

	pending, _ := reg.List(room.ID)
	if len(pending) != 0 {
		t.Fatalf("expected empty queue, got %d entries", len(pending))
	}
}

func TestExpiredRoomRejectsOperations(t *testing.T) {
	reg, room := newTestRegistry(t)

	req, err := reg.Enqueue(room.ID, "Alice")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	reg.now = func() time.Time { return room.ExpiresAt.Add(time.Second) }

	if _, err := reg.GetRoom(room.ID); !errors.Is(err, domain.ErrRoomExpired) {
		t.Fatalf("expected ErrRoomExpired, got %v", err)
	}
	if _, err := reg.Enqueue(room.ID, "Bob"); !errors.Is(err, domain.ErrRoomExpired) {
		t.Fatalf("expected ErrRoomExpired, got %v", err)
	}
	if _, err := reg.Resolve(room.ID, req.ID, domain.StateApproved); !errors.Is(err, domain.ErrRoomExpired) {
		t.Fatalf("expected ErrRoomExpired, got %v", err)
	}
}

func TestReaperEvictsExpiredRooms(t *testing.T) {
	reg, room := newTestRegistry(t)

	reg.Enqueue(room.ID, "Alice")
	reg.Enqueue(room.ID, "Bob")

	reg.now = func() time.Time { return room.ExpiresAt.Add(time.Second) }

	var gotRoom string
	var gotPending int
	reg.reapExpired(func(roomID string, pending int) {
		gotRoom = roomID
		gotPending = pending
	})

	if gotRoom != room.ID {
		t.Fatalf("expected reap callback for %s, got %q", room.ID, gotRoom)
	}
	if gotPending != 2 {
		t.Fatalf("expected 2 pending dropped, got %d", gotPending)
	}
	if reg.RoomCount() != 0 {
		t.Fatal("expected expired room to be evicted")
	}
}
