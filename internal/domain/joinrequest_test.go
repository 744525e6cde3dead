package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewJoinRequestValidation(t *testing.T) {
	now := time.Now()

	if _, err := NewJoinRequest("room-1", "", now); err == nil {
		t.Fatal("expected error for empty display name")
	}
	if _, err := NewJoinRequest("room-1", strings.Repeat("a", 65), now); err == nil {
		t.Fatal("expected error for oversized display name")
	}

	req, err := NewJoinRequest("room-1", "Alice", now)
	if err != nil {
		t.Fatalf("new join request: %v", err)
	}
	if req.State != StatePending {
		t.Fatalf("expected pending state, got %q", req.State)
	}
	if req.ID == "" {
		t.Fatal("expected a generated request id")
	}
	if req.DecidedAt != nil {
		t.Fatal("expected no decision timestamp on a fresh request")
	}
}

func TestJoinRequestDecide(t *testing.T) {
	now := time.Now()

	req, err := NewJoinRequest("room-1", "Alice", now)
	if err != nil {
		t.Fatalf("new join request: %v", err)
	}

	if err := req.Decide("maybe", now); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bogus decision, got %v", err)
	}

	decidedAt := now.Add(time.Minute)
	if err := req.Decide(StateApproved, decidedAt); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if req.State != StateApproved {
		t.Fatalf("expected approved, got %q", req.State)
	}
	if req.DecidedAt == nil || !req.DecidedAt.Equal(decidedAt) {
		t.Fatal("expected decision timestamp to be stamped")
	}

	// Terminal: the second decision always conflicts, whatever it is.
	if err := req.Decide(StateDenied, now); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if err := req.Decide(StateApproved, now); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}
