// Package json holds the request/response envelope helpers shared by all
// handlers.
package json

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenroomhq/greenroom/internal/domain"
)

const maxBodyBytes = 1 << 20 // 1MB

type errorEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func Read(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a stable error kind plus a human-readable detail.
// The kind is resolved from the sentinel in err's chain, so wrapped context
// (provider paths, upstream status codes) stays out of the kind slot.
func WriteError(w http.ResponseWriter, status int, err error, detail string) {
	Write(w, status, errorEnvelope{
		Error:  errorKind(err),
		Detail: detail,
	})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return domain.ErrRoomNotFound.Error()
	case errors.Is(err, domain.ErrRoomExpired):
		return domain.ErrRoomExpired.Error()
	case errors.Is(err, domain.ErrRequestNotFound):
		return domain.ErrRequestNotFound.Error()
	case errors.Is(err, domain.ErrAlreadyDecided):
		return domain.ErrAlreadyDecided.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return domain.ErrUpstreamUnavailable.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return domain.ErrInvalidInput.Error()
	default:
		return "internal"
	}
}

func WriteValidationError(w http.ResponseWriter, err error) {
	detail := "Request validation failed"
	if err != nil {
		detail = err.Error()
	}

	Write(w, http.StatusBadRequest, errorEnvelope{
		Error:  domain.ErrInvalidInput.Error(),
		Detail: detail,
	})
}

func WriteBadRequestError(w http.ResponseWriter, detail string) {
	Write(w, http.StatusBadRequest, errorEnvelope{
		Error:  "bad request",
		Detail: detail,
	})
}

func WriteInternalError(w http.ResponseWriter, err error) {
	// Deliberately vague: the raw error goes to the logs, not the client.
	Write(w, http.StatusInternalServerError, errorEnvelope{
		Error:  "internal",
		Detail: "Something went wrong",
	})
}
