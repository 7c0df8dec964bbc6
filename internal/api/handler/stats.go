package handler

import (
	"net/http"

	"github.com/mcoot/connectfour-go/internal/api/response"
	"github.com/mcoot/connectfour-go/internal/services/dispatch"
	"github.com/mcoot/connectfour-go/internal/worker"
)

// LiveStats reports live registry figures
type LiveStats interface {
	Stats() dispatch.Stats
}

// WorkerStats reports worker pool usage
type WorkerStats interface {
	Stats() worker.Stats
}

// ConnectionCounter reports open connections
type ConnectionCounter interface {
	Count() int
}

// StatsHandler serves live server figures
type StatsHandler struct {
	live    LiveStats
	workers WorkerStats
	conns   ConnectionCounter
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(live LiveStats, workers WorkerStats, conns ConnectionCounter) *StatsHandler {
	return &StatsHandler{live: live, workers: workers, conns: conns}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.StatsFromModel(h.live.Stats(), h.conns.Count(), h.workers.Stats()))
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
