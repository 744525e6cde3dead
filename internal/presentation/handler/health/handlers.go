package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/greenroomhq/greenroom/internal/infrastructure/json"
)

var (
	startTime       = time.Now()
	healthy   int32 = 1 // 1: healthy, 0 = unhealthy
)

// RoomCounter reports how many meeting rooms the service is tracking.
type RoomCounter interface {
	RoomCount() int
}

type Handler struct {
	rooms RoomCounter
}

func NewHandler(rooms RoomCounter) *Handler {
	return &Handler{rooms: rooms}
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API, including uptime and tracked room count
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "Service is unhealthy"
// @Router       /health [get]
// @Router       /healthz [get]
// @Router       /ready [get]
// @Router       /live [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	state := "ok"
	if atomic.LoadInt32(&healthy) == 0 {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	rooms := 0
	if h.rooms != nil {
		rooms = h.rooms.RoomCount()
	}

	json.Write(w, status, healthResponse{
		Status:    state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
		Rooms:     rooms,
	})
}
