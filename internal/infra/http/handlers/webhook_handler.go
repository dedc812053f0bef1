package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/infra/metrics"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

type ClientRegistrar interface {
	Execute(ctx context.Context, input usecase.RegisterClientInput, origin string) (*usecase.RegisterClientOutput, error)
}

// webhookPayload aceita os nomes de campo em português (integrações antigas)
// e em inglês.
type webhookPayload struct {
	Name               *string  `json:"name"`
	Nome               *string  `json:"nome"`
	Phone              *string  `json:"phone"`
	Telefone           *string  `json:"telefone"`
	Email              string   `json:"email"`
	CPF                string   `json:"cpf"`
	FirstPurchaseDate  string   `json:"first_purchase_date"`
	DataPrimeiraCompra string   `json:"data_primeira_compra"`
	Procedure          string   `json:"procedure"`
	Procedimento       string   `json:"procedimento"`
	AmountPaid         *float64 `json:"amount_paid"`
	ValorPago          *float64 `json:"valor_pago"`
	Notes              string   `json:"notes"`
	Observacoes        string   `json:"observacoes"`
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPtr[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// toInput devolve o nome do campo obrigatório ausente, se houver.
func (p webhookPayload) toInput() (usecase.RegisterClientInput, string) {
	name := firstPtr(p.Nome, p.Name)
	if name == nil {
		return usecase.RegisterClientInput{}, "nome"
	}
	phone := firstPtr(p.Telefone, p.Phone)
	if phone == nil {
		return usecase.RegisterClientInput{}, "telefone"
	}
	return usecase.RegisterClientInput{
		Name:              *name,
		Phone:             *phone,
		Email:             p.Email,
		CPF:               p.CPF,
		FirstPurchaseDate: firstString(p.DataPrimeiraCompra, p.FirstPurchaseDate),
		Procedure:         firstString(p.Procedimento, p.Procedure),
		AmountPaid:        firstPtr(p.ValorPago, p.AmountPaid),
		Notes:             firstString(p.Observacoes, p.Notes),
	}, ""
}

type WebhookHandler struct {
	Registrar ClientRegistrar
}

func NewWebhookHandler(registrar ClientRegistrar) *WebhookHandler {
	return &WebhookHandler{Registrar: registrar}
}

// Handle recebe novos clientes de sistemas externos (POST /api/webhook).
// A autenticação por token fica no middleware do grupo /api.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Payload JSON inválido ou vazio.")
		return
	}

	input, missing := payload.toInput()
	if missing != "" {
		writeError(w, http.StatusBadRequest, "Campo obrigatório ausente: "+missing)
		return
	}

	output, err := h.Registrar.Execute(r.Context(), input, usecase.OriginWebhook)
	if err != nil {
		log.Warn().Err(err).Msg("❌ Webhook rejeitado")
		writeUseCaseError(w, err)
		return
	}

	metrics.RecordClientRegistered(usecase.OriginWebhook)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Cliente recebido com sucesso!",
		"client_id": output.ClientID,
	})
}
