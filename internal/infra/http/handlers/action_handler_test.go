package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/infra/http/handlers"
)

func actionRouter(h *handlers.ActionHandler) http.Handler {
	r := chi.NewRouter()
	r.Patch("/api/actions/{id}", h.Resolve)
	r.Get("/api/actions/stale", h.ListStale)
	return r
}

func TestActionHandler_Resolve(t *testing.T) {
	actions := new(MockActionRepository)
	actions.On("UpdateOutcome", mock.Anything, int64(10), entity.OutcomeScheduled).
		Return(&entity.Action{ID: 10, Outcome: entity.OutcomeScheduled}, nil)

	rec := serve(actionRouter(handlers.NewActionHandler(actions)), http.MethodPatch, "/api/actions/10", `{"outcome":"scheduled"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scheduled"`)
}

func TestActionHandler_ResolveRejectsNonTerminal(t *testing.T) {
	actions := new(MockActionRepository)
	h := actionRouter(handlers.NewActionHandler(actions))

	for _, body := range []string{`{"outcome":"pending"}`, `{"outcome":"talvez"}`, `{}`} {
		rec := serve(h, http.MethodPatch, "/api/actions/10", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	actions.AssertNotCalled(t, "UpdateOutcome", mock.Anything, mock.Anything, mock.Anything)
}

func TestActionHandler_ResolveErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Não encontrada", entity.ErrActionNotFound, http.StatusNotFound},
		{"Já resolvida", entity.ErrActionAlreadyResolved, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := new(MockActionRepository)
			actions.On("UpdateOutcome", mock.Anything, int64(3), entity.OutcomeNo).Return(nil, tt.err)

			rec := serve(actionRouter(handlers.NewActionHandler(actions)), http.MethodPatch, "/api/actions/3", `{"outcome":"no"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestActionHandler_ListStale(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	actions := new(MockActionRepository)
	actions.On("FindStalePending", mock.Anything, now.Add(-48*time.Hour)).
		Return([]*entity.Action{{ID: 1, Outcome: entity.OutcomePending}}, nil)

	h := handlers.NewActionHandler(actions)
	h.Now = func() time.Time { return now }

	rec := serve(actionRouter(h), http.MethodGet, "/api/actions/stale?older_than_hours=48", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	actions.AssertExpectations(t)
}

func TestActionHandler_ListStaleDefaultsAndValidation(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	actions := new(MockActionRepository)
	actions.On("FindStalePending", mock.Anything, now.Add(-24*time.Hour)).Return(nil, nil)

	h := handlers.NewActionHandler(actions)
	h.Now = func() time.Time { return now }
	router := actionRouter(h)

	rec := serve(router, http.MethodGet, "/api/actions/stale", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/actions/stale?older_than_hours=0", "").Code)
}
