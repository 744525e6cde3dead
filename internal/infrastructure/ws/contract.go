package ws

// Event is the wire envelope pushed to room subscribers.
type Event struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data"`
}

// Payload structs
type JoinRequestPayload struct {
	RequestID   string `json:"requestId"`
	DisplayName string `json:"displayName"`
	RequestedAt string `json:"requestedAt"`
}

type DecisionPayload struct {
	RequestID string `json:"requestId"`
}

type QueueClearedPayload struct {
	Dropped int `json:"dropped"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
}
