package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomID string `json:"roomId"`
	Data   []byte `json:"data"`
}

// Routing keys - using consistent event patterns
const (
	EventRoomCreated   = "room.created"
	EventRoomExpired   = "room.expired"
	EventRoomCleared   = "room.cleared"
	EventJoinRequested = "admission.requested"
	EventAdmitted      = "admission.admitted"
	EventDenied        = "admission.denied"
)
