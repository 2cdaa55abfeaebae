package api

import (
	"net/http"

	"github.com/okian/rehabsim/internal/domain/types"
)

// StatsProvider exposes service statistics and the widgets' readouts.
type StatsProvider interface {
	GetStats() map[string]any
	Snapshot() types.Snapshot
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type statsResponse struct {
	Service map[string]any `json:"service"`
	Widgets types.Snapshot `json:"widgets"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Service: h.statsProvider.GetStats(),
		Widgets: h.statsProvider.Snapshot(),
	})
}
