package messaging

import "github.com/greenroomhq/greenroom/internal/domain"

const (
	AdmissionsQueue = "admissions"
	DeadLetterQueue = "dead_letter_queue"
)

type AdmissionEventData struct {
	Log domain.AdmissionAuditLog `json:"log"`
}
