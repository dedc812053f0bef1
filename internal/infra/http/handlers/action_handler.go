package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
)

type ActionHandler struct {
	Actions entity.ActionRepositoryInterface
	Now     func() time.Time
}

func NewActionHandler(actions entity.ActionRepositoryInterface) *ActionHandler {
	return &ActionHandler{Actions: actions, Now: time.Now}
}

type resolveActionRequest struct {
	Outcome entity.ActionOutcome `json:"outcome"`
}

// Resolve (PATCH /api/actions/{id}) o operador registra o resultado do contato.
func (h *ActionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req resolveActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if !req.Outcome.IsTerminal() {
		writeError(w, http.StatusBadRequest, "outcome deve ser yes, no, no-response, scheduled ou purchased")
		return
	}

	a, err := h.Actions.UpdateOutcome(r.Context(), id, req.Outcome)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	log.Info().Int64("action_id", id).Str("outcome", string(a.Outcome)).Msg("✍️ Ação resolvida manualmente")
	writeJSON(w, http.StatusOK, a)
}

// ListStale (GET /api/actions/stale?older_than_hours=24)
func (h *ActionHandler) ListStale(w http.ResponseWriter, r *http.Request) {
	hours, err := queryInt(r, "older_than_hours", 24)
	if err != nil || hours <= 0 {
		writeError(w, http.StatusBadRequest, "older_than_hours inválido")
		return
	}

	actions, err := h.Actions.FindStalePending(r.Context(), h.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	if actions == nil {
		actions = []*entity.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}
