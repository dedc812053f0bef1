package handlers

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/infra/metrics"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ClientHandler struct {
	Clients   entity.ClientRepositoryInterface
	Actions   entity.ActionRepositoryInterface
	Registrar ClientRegistrar
}

func NewClientHandler(clients entity.ClientRepositoryInterface, actions entity.ActionRepositoryInterface, registrar ClientRegistrar) *ClientHandler {
	return &ClientHandler{Clients: clients, Actions: actions, Registrar: registrar}
}

// List (GET /api/clients?limit=&offset=)
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit inválido")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset inválido")
		return
	}

	clients, err := h.Clients.List(r.Context(), limit, offset)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	if clients == nil {
		clients = []*entity.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// Get (GET /api/clients/{id})
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Clients.FindByID(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create (POST /api/clients) cadastro manual pelo painel.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterClientInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}

	if errs := usecase.ValidateRegisterClientInput(input); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Code: "VALIDATION_ERROR", Details: errs})
		return
	}

	output, err := h.Registrar.Execute(r.Context(), input, usecase.OriginDashboard)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	metrics.RecordClientRegistered(usecase.OriginDashboard)
	writeJSON(w, http.StatusCreated, output)
}

// Patch (PATCH /api/clients/{id}) edição manual de status, próxima ação e notas.
func (h *ClientHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch entity.ClientPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "nenhum campo para atualizar")
		return
	}
	if msg := validatePatch(patch); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.Clients.UpdateManual(r.Context(), id, patch)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func validatePatch(p entity.ClientPatch) string {
	if p.Status != nil && utf8.RuneCountInString(*p.Status) > 500 {
		return "status: must not exceed 500 characters"
	}
	if p.NextAction != nil && utf8.RuneCountInString(*p.NextAction) > 100 {
		return "next_action: must not exceed 100 characters"
	}
	if p.Notes != nil && utf8.RuneCountInString(*p.Notes) > 2000 {
		return "notes: must not exceed 2000 characters"
	}
	return ""
}

// ListActions (GET /api/clients/{id}/actions)
func (h *ClientHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := h.Clients.FindByID(r.Context(), id); err != nil {
		writeUseCaseError(w, err)
		return
	}

	actions, err := h.Actions.ListByClient(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	if actions == nil {
		actions = []*entity.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
