package entity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrActionNotFound        = errors.New("ação não encontrada")
	ErrActionAlreadyResolved = errors.New("ação já foi resolvida")
)

type ActionType string

const (
	ActionMessage  ActionType = "message"
	ActionCall     ActionType = "call"
	ActionPurchase ActionType = "purchase"
)

type ActionOutcome string

const (
	OutcomePending    ActionOutcome = "pending"
	OutcomeYes        ActionOutcome = "yes"
	OutcomeNo         ActionOutcome = "no"
	OutcomeNoResponse ActionOutcome = "no-response"
	OutcomeScheduled  ActionOutcome = "scheduled"
	OutcomePurchased  ActionOutcome = "purchased"
)

func (o ActionOutcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomeYes, OutcomeNo, OutcomeNoResponse, OutcomeScheduled, OutcomePurchased:
		return true
	}
	return false
}

// IsTerminal diz se a ação já foi resolvida.
func (o ActionOutcome) IsTerminal() bool {
	return o.Valid() && o != OutcomePending
}

func (t ActionType) Valid() bool {
	return t == ActionMessage || t == ActionCall || t == ActionPurchase
}

// Entidade: Action. É a trilha de auditoria, nunca é apagada.
type Action struct {
	ID        int64         `json:"id"`
	ClientID  int64         `json:"client_id"`
	Type      ActionType    `json:"type"`
	Content   string        `json:"content"`
	Outcome   ActionOutcome `json:"outcome"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewPendingAction monta a ação no estado inicial de uma tentativa de contato.
func NewPendingAction(clientID int64, t ActionType, content string, at time.Time) (*Action, error) {
	if clientID <= 0 {
		return nil, errors.New("client_id é obrigatório")
	}
	if !t.Valid() {
		return nil, fmt.Errorf("tipo de ação inválido: %q", t)
	}
	return &Action{
		ClientID:  clientID,
		Type:      t,
		Content:   content,
		Outcome:   OutcomePending,
		CreatedAt: at,
	}, nil
}

type ActionRepositoryInterface interface {
	Create(ctx context.Context, a *Action) error
	UpdateOutcome(ctx context.Context, id int64, outcome ActionOutcome) (*Action, error)
	ListByClient(ctx context.Context, clientID int64) ([]*Action, error)
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*Action, error)
}
