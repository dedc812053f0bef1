package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/crm-followup/internal/infra/http/handlers"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

func postWebhook(h *handlers.WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestWebhook_PortugueseKeys(t *testing.T) {
	registrar := new(MockRegistrar)
	registrar.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.RegisterClientInput) bool {
		return in.Name == "Maria Souza" &&
			in.Phone == "(11) 98765-4321" &&
			in.FirstPurchaseDate == "01/01/2024" &&
			in.Procedure == "Limpeza de pele" &&
			in.AmountPaid != nil && *in.AmountPaid == 150.5
	}), usecase.OriginWebhook).Return(&usecase.RegisterClientOutput{ClientID: 12, Message: "ok"}, nil)

	rec := postWebhook(handlers.NewWebhookHandler(registrar), `{
		"nome": "Maria Souza",
		"telefone": "(11) 98765-4321",
		"data_primeira_compra": "01/01/2024",
		"procedimento": "Limpeza de pele",
		"valor_pago": 150.5
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cliente recebido com sucesso!", body["message"])
	assert.Equal(t, float64(12), body["client_id"])
	registrar.AssertExpectations(t)
}

func TestWebhook_EnglishKeys(t *testing.T) {
	registrar := new(MockRegistrar)
	registrar.On("Execute", mock.Anything, mock.MatchedBy(func(in usecase.RegisterClientInput) bool {
		return in.Name == "John" && in.Phone == "11987654321" && in.Email == "john@example.com"
	}), usecase.OriginWebhook).Return(&usecase.RegisterClientOutput{ClientID: 1}, nil)

	rec := postWebhook(handlers.NewWebhookHandler(registrar),
		`{"name":"John","phone":"11987654321","email":"john@example.com"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWebhook_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing string
	}{
		{"Sem nome", `{"telefone":"11987654321"}`, "nome"},
		{"Sem telefone", `{"nome":"Maria"}`, "telefone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := new(MockRegistrar)
			rec := postWebhook(handlers.NewWebhookHandler(registrar), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Campo obrigatório ausente: "+tt.missing)
			registrar.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWebhook_InvalidJSON(t *testing.T) {
	registrar := new(MockRegistrar)

	for _, body := range []string{"", "{nome:", "null"} {
		rec := postWebhook(handlers.NewWebhookHandler(registrar), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	registrar.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_UseCaseErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Validação", &usecase.DomainError{Code: "VALIDATION_ERROR", Message: "phone inválido"}, http.StatusBadRequest},
		{"Duplicado", &usecase.DomainError{Code: "CLIENT_ALREADY_EXISTS", Message: "cliente já cadastrado"}, http.StatusConflict},
		{"Banco", &usecase.TechnicalError{Code: "DATABASE_ERROR", Message: "falha"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := new(MockRegistrar)
			registrar.On("Execute", mock.Anything, mock.Anything, usecase.OriginWebhook).Return(nil, tt.err)

			rec := postWebhook(handlers.NewWebhookHandler(registrar), `{"nome":"Maria","telefone":"11987654321"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
