package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/crm-followup/internal/entity"
)

// FollowUpNotifier envia a mensagem de acompanhamento para um cliente.
// nil = entregue; qualquer erro conta como falha de entrega.
type FollowUpNotifier interface {
	SendFollowUp(ctx context.Context, c *entity.Client) error
}

type DueClientFinder interface {
	FindWithPurchaseBefore(ctx context.Context, date time.Time) ([]*entity.Client, error)
}

type DueSelector interface {
	SelectDue(ctx context.Context, referenceDays int) ([]*entity.Client, error)
}

type ClientScheduleUpdater interface {
	UpdateStatus(ctx context.Context, id int64, status string) (*entity.Client, error)
	UpdateNextAction(ctx context.Context, id int64, nextAction, lastAction time.Time) (*entity.Client, error)
}

type ActionRecorder interface {
	Create(ctx context.Context, a *entity.Action) error
	UpdateOutcome(ctx context.Context, id int64, outcome entity.ActionOutcome) (*entity.Action, error)
}

type ClientCreator interface {
	Create(ctx context.Context, c *entity.Client) error
}

// ClientEventPublisher avisa sistemas externos sobre clientes novos. Opcional.
type ClientEventPublisher interface {
	PublishClientRegistered(ctx context.Context, event ClientRegisteredEvent) error
}

// CycleReportPublisher recebe o resumo de cada ciclo. Opcional.
type CycleReportPublisher interface {
	PublishCycleReport(ctx context.Context, report CycleReport) error
}
