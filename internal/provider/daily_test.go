package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/greenroomhq/greenroom/internal/domain"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *DailyProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewDailyProvider(DailyConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestCreateRoomRequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]string{
			"name": "gr-abc123",
			"url":  "https://example.daily.co/gr-abc123",
		})
	})

	room, err := p.CreateRoom(context.Background(), CreateRoomRequest{
		Privacy:         domain.PrivacyPrivate,
		TTL:             time.Hour,
		MaxParticipants: 12,
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	if room.ID != "gr-abc123" {
		t.Fatalf("expected provider room name as id, got %q", room.ID)
	}
	if room.JoinURL != "https://example.daily.co/gr-abc123" {
		t.Fatalf("unexpected join url %q", room.JoinURL)
	}

	if gotPath != "/rooms" {
		t.Fatalf("expected POST /rooms, got %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["privacy"] != "private" {
		t.Fatalf("expected private room, got %v", gotBody["privacy"])
	}

	props, ok := gotBody["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties object, got %v", gotBody)
	}
	if props["enable_knocking"] != true {
		t.Fatal("private rooms must enable knocking")
	}
	if props["max_participants"] != float64(12) {
		t.Fatalf("expected max_participants 12, got %v", props["max_participants"])
	}
}

func TestIssueCredentialRequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-123"})
	})

	credential, err := p.IssueCredential(context.Background(), CredentialRequest{
		RoomID:      "gr-abc123",
		Owner:       true,
		TTL:         30 * time.Minute,
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("issue credential: %v", err)
	}
	if credential != "jwt-123" {
		t.Fatalf("expected jwt-123, got %q", credential)
	}

	if gotPath != "/meeting-tokens" {
		t.Fatalf("expected POST /meeting-tokens, got %q", gotPath)
	}

	props, ok := gotBody["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties object, got %v", gotBody)
	}
	if props["room_name"] != "gr-abc123" {
		t.Fatalf("expected room_name gr-abc123, got %v", props["room_name"])
	}
	if props["is_owner"] != true {
		t.Fatal("expected is_owner for the host credential")
	}
	if props["user_name"] != "Alice" {
		t.Fatalf("expected user_name Alice, got %v", props["user_name"])
	}
}

func TestProviderErrorsCollapseToUpstreamUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "auth rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "forbidden", http.StatusForbidden)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "empty result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{}"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.handler)

			if _, err := p.CreateRoom(context.Background(), CreateRoomRequest{
				Privacy: domain.PrivacyPrivate,
				TTL:     time.Hour,
			}); !errors.Is(err, domain.ErrUpstreamUnavailable) {
				t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
			}
		})
	}
}

func TestProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listens anymore

	p, err := NewDailyProvider(DailyConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		RequestTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	if _, err := p.IssueCredential(context.Background(), CredentialRequest{
		RoomID: "gr-abc123",
		TTL:    time.Minute,
	}); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestNewDailyProviderValidation(t *testing.T) {
	if _, err := NewDailyProvider(DailyConfig{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewDailyProvider(DailyConfig{BaseURL: "https://example.test"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
