package handlers

import (
	"net/http"

	"github.com/xavierca1/crm-followup/internal/entity"
)

type DashboardHandler struct {
	Clients entity.ClientRepositoryInterface
}

func NewDashboardHandler(clients entity.ClientRepositoryInterface) *DashboardHandler {
	return &DashboardHandler{Clients: clients}
}

// Summary (GET /api/dashboard/summary) números dos cards do painel.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Clients.Summary(r.Context())
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
