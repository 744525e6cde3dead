package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/greenroomhq/greenroom/internal/domain"
)

func TestReadRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"known": 1, "mystery": 2}`))

	var dst struct {
		Known int `json:"known"`
	}
	if err := Read(r, &dst); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestReadDecodesBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name": "Alice"}`))

	var dst struct {
		Name string `json:"name"`
	}
	if err := Read(r, &dst); err != nil {
		t.Fatalf("read: %v", err)
	}
	if dst.Name != "Alice" {
		t.Fatalf("expected Alice, got %q", dst.Name)
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, domain.ErrRoomNotFound, "Room not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "room not found" {
		t.Fatalf("expected stable error kind, got %q", body["error"])
	}
	if body["detail"] != "Room not found" {
		t.Fatalf("expected detail, got %q", body["detail"])
	}
}

func TestWriteErrorKindStableAcrossWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "wrapped upstream failure",
			err:  fmt.Errorf("%w: /rooms returned 502", domain.ErrUpstreamUnavailable),
			want: "upstream unavailable",
		},
		{
			name: "doubly wrapped upstream failure",
			err:  fmt.Errorf("create room: %w", fmt.Errorf("%w: dial tcp: connection refused", domain.ErrUpstreamUnavailable)),
			want: "upstream unavailable",
		},
		{
			name: "wrapped conflict",
			err:  fmt.Errorf("admit: %w", domain.ErrAlreadyDecided),
			want: "request already decided",
		},
		{
			name: "wrapped expiry",
			err:  fmt.Errorf("join: %w", domain.ErrRoomExpired),
			want: "room expired",
		},
		{
			name: "unrecognized error stays opaque",
			err:  errors.New("mongo: connection reset by peer"),
			want: "internal",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, http.StatusBadGateway, tc.err, "detail")

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tc.want {
				t.Fatalf("expected kind %q, got %q", tc.want, body["error"])
			}
		})
	}
}

func TestWriteValidationErrorKeepsKindFixed(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, errors.New("display_name must not be empty"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "invalid input" {
		t.Fatalf("expected kind %q, got %q", "invalid input", body["error"])
	}
	if body["detail"] != "display_name must not be empty" {
		t.Fatalf("expected detail to carry the specifics, got %q", body["detail"])
	}
}

func TestWriteInternalErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteInternalError(rec, errors.New("mongo: connection reset by peer"))

	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal details leaked to the client: %s", rec.Body.String())
	}
}
