package handlers

import (
	"net/http"

	"github.com/pongnight/bracket-server/services"
)

// AdminHandler сервисные операции над статистикой игроков.
type AdminHandler struct {
	statsService services.StatsService
}

func NewAdminHandler(ss services.StatsService) *AdminHandler {
	return &AdminHandler{statsService: ss}
}

// ResetStatsHandler обрабатывает POST /admin/stats/reset
func (h *AdminHandler) ResetStatsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.statsService.ResetPlayerStatistics(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "player statistics reset"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FixStatsHandler обрабатывает POST /admin/stats/fix
func (h *AdminHandler) FixStatsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.statsService.FixPlayerStatistics(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "player statistics recomputed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
