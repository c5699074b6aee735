package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/mutantautomate/mutant/internal/server/response"
)

// HandleHealth handles GET /api/v1/health.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":    "healthy",
		"service":   "mutant-api",
		"version":   "v1",
		"run_state": h.client.RunState(),
	})
}

// HandleStats handles GET /api/v1/stats.
// @Summary Server statistics
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security ApiKeyAuth
// @Router /stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      mem.Alloc / 1024 / 1024,
		},
		"updates": map[string]any{
			"published_total": h.broker.Published(),
			"dropped_total":   h.broker.Dropped(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
		"run": map[string]any{
			"run_id":   h.client.RunID(),
			"state":    h.client.RunState(),
			"events":   len(h.client.Events()),
			"mutating": h.client.Mutating(),
		},
	})
}
