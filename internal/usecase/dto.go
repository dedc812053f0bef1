package usecase

import "time"

type RegisterClientInput struct {
	Name              string   `json:"name" validate:"required,min=3,max=200"`
	Phone             string   `json:"phone" validate:"required,br_phone"`
	Email             string   `json:"email" validate:"omitempty,max=254,email"`
	CPF               string   `json:"cpf" validate:"omitempty,cpf"`
	FirstPurchaseDate string   `json:"first_purchase_date" validate:"omitempty,loose_date"`
	Procedure         string   `json:"procedure" validate:"omitempty,max=200"`
	AmountPaid        *float64 `json:"amount_paid" validate:"omitempty,gte=0"`
	Notes             string   `json:"notes" validate:"omitempty,max=2000"`
	Status            string   `json:"status" validate:"omitempty,max=500"`
}

type RegisterClientOutput struct {
	ClientID int64  `json:"client_id"`
	Message  string `json:"message"`
}

// Origens de cadastro.
const (
	OriginWebhook   = "webhook"
	OriginDashboard = "dashboard"
)

type ClientRegisteredEvent struct {
	EventID    string    `json:"event_id"`
	ClientID   int64     `json:"client_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Origin     string    `json:"origin"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CycleReport é o resumo de um ciclo. O detalhe por cliente fica na trilha de ações.
type CycleReport struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

func (r CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
