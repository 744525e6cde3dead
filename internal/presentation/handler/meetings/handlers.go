package meetings

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/greenroomhq/greenroom/internal/admission"
	"github.com/greenroomhq/greenroom/internal/domain"
	"github.com/greenroomhq/greenroom/internal/infrastructure/json"
	"github.com/greenroomhq/greenroom/internal/infrastructure/metrics"
	"github.com/greenroomhq/greenroom/internal/infrastructure/profanity"
	"github.com/greenroomhq/greenroom/internal/infrastructure/ws"
)

type Handler struct {
	coordinator *admission.Coordinator
	roomManager *ws.RoomManager
	core        *ws.Core
	filter      *profanity.Filter
	defaults    domain.RoomConfig
}

func NewHandler(
	coordinator *admission.Coordinator,
	roomManager *ws.RoomManager,
	core *ws.Core,
	filter *profanity.Filter,
	defaults domain.RoomConfig,
) *Handler {
	return &Handler{
		coordinator: coordinator,
		roomManager: roomManager,
		core:        core,
		filter:      filter,
		defaults:    defaults,
	}
}

// CreateMeetingHandler godoc
// @Summary      Create a new meeting room
// @Description  Provisions a room at the video provider and returns the host and participant entry points
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        request body createMeetingRequest false "Optional room overrides"
// @Success      201 {object} createMeetingResponse "Meeting created successfully"
// @Failure      400 {object} map[string]interface{} "Bad request - invalid overrides"
// @Failure      502 {object} map[string]interface{} "Bad gateway - video provider unavailable"
// @Router       /meetings [post]
func (h *Handler) CreateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	cfg := h.defaults

	if r.ContentLength > 0 {
		var req createMeetingRequest
		if err := json.Read(r, &req); err != nil {
			json.WriteValidationError(w, err)
			return
		}

		if req.TTLSeconds != 0 {
			if req.TTLSeconds < 0 {
				json.WriteBadRequestError(w, "ttl_seconds must be positive")
				return
			}
			cfg.TTL = time.Duration(req.TTLSeconds) * time.Second
		}

		if req.MaxParticipants != 0 {
			if req.MaxParticipants < 0 {
				json.WriteBadRequestError(w, "max_participants must be positive")
				return
			}
			cfg.MaxParticipants = req.MaxParticipants
		}
	}

	result, err := h.coordinator.CreateMeeting(r.Context(), cfg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			json.WriteValidationError(w, err)
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			json.WriteError(w, http.StatusBadGateway, err, "Video provider is unavailable")
		default:
			log.Printf("Failed to create meeting: %v", err)
			json.WriteInternalError(w, err)
		}
		return
	}

	resp := createMeetingResponse{
		RoomID:         result.Room.ID,
		HostURL:        result.HostURL,
		ParticipantURL: result.ParticipantURL,
		ExpiresAt:      result.Room.ExpiresAt,
	}

	json.Write(w, http.StatusCreated, resp)
}

// JoinHandler godoc
// @Summary      Request admission to a meeting
// @Description  Places the caller at the tail of the room's waiting queue
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        request body joinRequestBody true "Join parameters"
// @Success      200 {object} joinRequestResponse "Request queued"
// @Failure      400 {object} map[string]interface{} "Bad request - invalid display name"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Router       /meetings/{roomId}/join [post]
func (h *Handler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	var req joinRequestBody
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if h.filter.Contains(req.DisplayName) {
		json.WriteBadRequestError(w, "Display name contains inappropriate language")
		return
	}

	joinReq, err := h.coordinator.RequestJoin(r.Context(), roomID, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		case errors.Is(err, domain.ErrRoomExpired):
			json.WriteError(w, http.StatusNotFound, err, "Room has expired")
		case errors.Is(err, domain.ErrInvalidInput):
			json.WriteValidationError(w, err)
		default:
			log.Printf("Failed to queue join request for room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, toJoinResponse(joinReq))
}

// WaitingListHandler godoc
// @Summary      List pending join requests
// @Description  Returns the room's undecided requests in arrival order
// @Tags         meetings
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} waitingListResponse "Pending requests, oldest first"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Router       /meetings/{roomId}/waiting-list [get]
func (h *Handler) WaitingListHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	pending, err := h.coordinator.WaitingList(roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		case errors.Is(err, domain.ErrRoomExpired):
			json.WriteError(w, http.StatusNotFound, err, "Room has expired")
		default:
			log.Printf("Failed to list waiting requests for room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	resp := waitingListResponse{Requests: make([]joinRequestResponse, 0, len(pending))}
	for i := range pending {
		resp.Requests = append(resp.Requests, toJoinResponse(&pending[i]))
	}

	json.Write(w, http.StatusOK, resp)
}

// AdmitHandler godoc
// @Summary      Admit a waiting participant
// @Description  Approves a pending request and mints a personal participant token
// @Tags         meetings
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        requestId path string true "Join request ID"
// @Success      200 {object} admitResponse "Participant admitted"
// @Failure      404 {object} map[string]interface{} "Room or request not found"
// @Failure      409 {object} map[string]interface{} "Conflict - request already decided"
// @Failure      502 {object} map[string]interface{} "Bad gateway - token mint failed"
// @Router       /meetings/{roomId}/requests/{requestId}/admit [post]
func (h *Handler) AdmitHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	requestID := chi.URLParam(r, "requestId")
	if roomID == "" || requestID == "" {
		json.WriteValidationError(w, errors.New("room ID and request ID are required"))
		return
	}

	tok, err := h.coordinator.Admit(r.Context(), roomID, requestID)
	if err != nil {
		h.writeDecisionError(w, roomID, requestID, err)
		return
	}

	json.Write(w, http.StatusOK, admitResponse{
		ParticipantToken: tok.Credential,
		ExpiresAt:        tok.ExpiresAt,
	})
}

// DenyHandler godoc
// @Summary      Deny a waiting participant
// @Description  Rejects a pending request; no credential is ever minted for it
// @Tags         meetings
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        requestId path string true "Join request ID"
// @Success      200 {object} decisionResponse "Request denied"
// @Failure      404 {object} map[string]interface{} "Room or request not found"
// @Failure      409 {object} map[string]interface{} "Conflict - request already decided"
// @Router       /meetings/{roomId}/requests/{requestId}/deny [post]
func (h *Handler) DenyHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	requestID := chi.URLParam(r, "requestId")
	if roomID == "" || requestID == "" {
		json.WriteValidationError(w, errors.New("room ID and request ID are required"))
		return
	}

	if err := h.coordinator.Deny(r.Context(), roomID, requestID); err != nil {
		h.writeDecisionError(w, roomID, requestID, err)
		return
	}

	json.Write(w, http.StatusOK, decisionResponse{RequestID: requestID, State: string(domain.StateDenied)})
}

// ClearHandler godoc
// @Summary      Clear a room's waiting queue
// @Description  Drops every queued request without admitting anyone
// @Tags         meetings
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} clearResponse "Queue cleared"
// @Failure      404 {object} map[string]interface{} "Room not found or expired"
// @Router       /meetings/{roomId}/clear [post]
func (h *Handler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	if err := h.coordinator.ClearRoom(r.Context(), roomID); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
		case errors.Is(err, domain.ErrRoomExpired):
			json.WriteError(w, http.StatusNotFound, err, "Room has expired")
		default:
			log.Printf("Failed to clear queue for room %s: %v", roomID, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, clearResponse{RoomID: roomID, Cleared: true})
}

// EventsHandler godoc
// @Summary      Subscribe to meeting events via WebSocket
// @Description  Streams join-request, decision and queue events for the room
// @Tags         meetings
// @Param        roomId path string true "Room ID"
// @Success      101 {object} map[string]interface{} "Switching Protocols - WebSocket connection established"
// @Failure      400 {object} map[string]interface{} "Bad request - missing room ID"
// @Failure      404 {object} map[string]interface{} "Room not found"
// @Router       /meetings/{roomId}/events [get]
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}

	conn, err := h.roomManager.Upgrade(w, r)
	if err != nil {
		log.Printf("WebSocket upgrade failed for room %s: %v", roomID, err)
		return
	}

	if _, err := h.coordinator.Room(roomID); err != nil {
		msg := "Failed to load room"
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			msg = "Room not found"
		case errors.Is(err, domain.ErrRoomExpired):
			msg = "Room has expired"
		}
		_ = conn.WriteJSON(ws.NewSubscribeFailed(roomID, msg))
		_ = conn.Close()
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), roomID)

	h.core.Register() <- client
	metrics.Subscribers.Inc()

	go client.WritePump()
	go func() {
		client.ReadPump(h.core)
		metrics.Subscribers.Dec()
	}()

	log.Printf("Subscriber %s connected to room %s", client.ID, roomID)
}

func (h *Handler) writeDecisionError(w http.ResponseWriter, roomID, requestID string, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		json.WriteError(w, http.StatusNotFound, err, "Room not found")
	case errors.Is(err, domain.ErrRoomExpired):
		json.WriteError(w, http.StatusNotFound, err, "Room has expired")
	case errors.Is(err, domain.ErrRequestNotFound):
		json.WriteError(w, http.StatusNotFound, err, "Join request not found")
	case errors.Is(err, domain.ErrAlreadyDecided):
		json.WriteError(w, http.StatusConflict, err, "Request has already been decided")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		json.WriteError(w, http.StatusBadGateway, err, "Video provider is unavailable")
	default:
		log.Printf("Failed to decide request %s in room %s: %v", requestID, roomID, err)
		json.WriteInternalError(w, err)
	}
}

func toJoinResponse(req *domain.JoinRequest) joinRequestResponse {
	return joinRequestResponse{
		RequestID:   req.ID,
		DisplayName: req.DisplayName,
		State:       string(req.State),
		RequestedAt: req.RequestedAt,
	}
}
