package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!

var (
	ErrClientNotFound  = errors.New("cliente não encontrado")
	ErrDuplicateClient = errors.New("cliente já cadastrado")
)

// DefaultClientStatus é o status inicial de quem chega pelo webhook.
const DefaultClientStatus = "Novo Cliente - 1 compra"

// Entidade: Client
type Client struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Email  *string `json:"email,omitempty"`
	CPF    *string `json:"cpf,omitempty"`
	Status string  `json:"status"`

	FirstPurchaseDate *LooseDate `json:"first_purchase_date,omitempty"`
	Procedure         *string    `json:"procedure,omitempty"`
	AmountPaid        *float64   `json:"amount_paid,omitempty"`

	// Agenda do acompanhamento. NextAction ausente = nunca agendado.
	NextAction *LooseDate `json:"next_action,omitempty"`
	LastAction *time.Time `json:"last_action,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Factory
func NewClient(name, phone string) (*Client, error) {
	c := &Client{
		Name:      strings.TrimSpace(name),
		Phone:     phone,
		Status:    DefaultClientStatus,
		CreatedAt: time.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if c.Phone == "" {
		return errors.New("phone is required")
	}
	return nil
}

// DisplayName devolve o nome ou um placeholder para logs e mensagens.
func (c *Client) DisplayName() string {
	if c.Name == "" {
		return "Cliente sem nome"
	}
	return c.Name
}

// ClientPatch carrega as edições manuais feitas pelo painel.
// Campos nil não são alterados.
type ClientPatch struct {
	Status     *string `json:"status,omitempty"`
	NextAction *string `json:"next_action,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (p ClientPatch) IsEmpty() bool {
	return p.Status == nil && p.NextAction == nil && p.Notes == nil
}

// ClientSummary alimenta os cards do painel.
type ClientSummary struct {
	TotalClients   int `json:"total_clients"`
	NewClients     int `json:"new_clients"`
	PendingActions int `json:"pending_actions"`
}

type ClientRepositoryInterface interface {
	Create(ctx context.Context, c *Client) error
	FindByID(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, limit, offset int) ([]*Client, error)
	FindWithPurchaseBefore(ctx context.Context, date time.Time) ([]*Client, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Client, error)
	UpdateNextAction(ctx context.Context, id int64, nextAction, lastAction time.Time) (*Client, error)
	UpdateManual(ctx context.Context, id int64, patch ClientPatch) (*Client, error)
	Summary(ctx context.Context) (*ClientSummary, error)
}
