package meetings

import "time"

// createMeetingRequest represents the request to create a meeting room
type createMeetingRequest struct {
	TTLSeconds      int `json:"ttl_seconds,omitempty" example:"3600"`     // Room lifetime in seconds
	MaxParticipants int `json:"max_participants,omitempty" example:"20"`  // Provider-side participant cap
}

// createMeetingResponse represents the response after creating a meeting
type createMeetingResponse struct {
	RoomID         string    `json:"room_id" example:"greenroom-a1b2c3"`  // Unique room identifier
	HostURL        string    `json:"host_url"`                            // Join URL carrying the host token
	ParticipantURL string    `json:"participant_url"`                     // Join URL carrying the shared participant token
	ExpiresAt      time.Time `json:"expires_at"`                          // When the room stops accepting joins
}

// joinRequestBody represents a participant asking to be admitted
type joinRequestBody struct {
	DisplayName string `json:"display_name" example:"Alice" minLength:"1"` // Name shown to the host; not unique within a room
}

// joinRequestResponse represents a queued join request
type joinRequestResponse struct {
	RequestID   string    `json:"request_id"`
	DisplayName string    `json:"display_name"`
	State       string    `json:"state" example:"pending"`
	RequestedAt time.Time `json:"requested_at"`
}

// waitingListResponse represents the pending view of a room's queue
type waitingListResponse struct {
	Requests []joinRequestResponse `json:"requests"`
}

// admitResponse carries the personal credential minted for an admitted participant
type admitResponse struct {
	ParticipantToken string    `json:"participant_token"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// decisionResponse acknowledges a deny decision
type decisionResponse struct {
	RequestID string `json:"request_id"`
	State     string `json:"state" example:"denied"`
}

// clearResponse acknowledges a queue wipe
type clearResponse struct {
	RoomID  string `json:"room_id"`
	Cleared bool   `json:"cleared"`
}
