package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/xavierca1/crm-followup/internal/infra/scheduler"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

type SchedulerController interface {
	Status() scheduler.Status
	RunNow(ctx context.Context) (*usecase.CycleReport, error)
}

type SchedulerHandler struct {
	Driver SchedulerController
}

func NewSchedulerHandler(driver SchedulerController) *SchedulerHandler {
	return &SchedulerHandler{Driver: driver}
}

// Status (GET /api/scheduler/status)
func (h *SchedulerHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Driver.Status())
}

// Run (POST /api/scheduler/run) roda um ciclo na hora e devolve o resumo.
func (h *SchedulerHandler) Run(w http.ResponseWriter, r *http.Request) {
	// O ciclo termina mesmo se o cliente HTTP desconectar.
	report, err := h.Driver.RunNow(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, scheduler.ErrCycleInFlight):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "CYCLE_IN_FLIGHT"})
	case errors.Is(err, scheduler.ErrDriverStopped):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "SCHEDULER_STOPPED"})
	case err != nil:
		writeUseCaseError(w, err)
	default:
		writeJSON(w, http.StatusOK, report)
	}
}
