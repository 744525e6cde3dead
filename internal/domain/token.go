package domain

import "time"

type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleParticipant
}

// Owner reports whether the role maps to the provider's owner capability
// (full room control, screen/camera on by default). Participants get
// camera/mic defaulted off and are subject to knocking.
func (r Role) Owner() bool {
	return r == RoleHost
}

// AccessToken is a role-scoped, time-bounded credential granting entry to a
// room. Immutable once issued; the holder is responsible for its secrecy.
type AccessToken struct {
	RoomID     string    `json:"roomId"`
	Role       Role      `json:"role"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Credential string    `json:"credential"`
}
