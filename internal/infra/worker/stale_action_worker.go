package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/infra/metrics"
)

type StalePendingFinder interface {
	FindStalePending(ctx context.Context, olderThan time.Time) ([]*entity.Action, error)
}

// StaleActionWorker vigia ações que ficaram pendentes depois do ciclo que as
// criou (queda no meio do envio, por exemplo). Só reporta; a resolução é manual.
type StaleActionWorker struct {
	repo         StalePendingFinder
	staleAfter   time.Duration
	tickInterval time.Duration
	now          func() time.Time
}

func NewStaleActionWorker(repo StalePendingFinder, staleAfter, tickInterval time.Duration) *StaleActionWorker {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour // um intervalo do agendador diário
	}
	if tickInterval <= 0 {
		tickInterval = 15 * time.Minute
	}
	return &StaleActionWorker{
		repo:         repo,
		staleAfter:   staleAfter,
		tickInterval: tickInterval,
		now:          time.Now,
	}
}

func (w *StaleActionWorker) Start(ctx context.Context) {
	log.Info().Dur("stale_after", w.staleAfter).Msg("🕒 Worker de ações pendentes iniciado")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("⚠️ Worker de ações pendentes encerrado")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check conta as ações pendentes antigas e atualiza a métrica.
func (w *StaleActionWorker) Check(ctx context.Context) int {
	olderThan := w.now().Add(-w.staleAfter)
	actions, err := w.repo.FindStalePending(ctx, olderThan)
	if err != nil {
		log.Error().Err(err).Msg("❌ Erro ao buscar ações pendentes antigas")
		return -1
	}

	metrics.SetStalePendingActions(len(actions))
	for _, a := range actions {
		log.Warn().
			Int64("action_id", a.ID).
			Int64("client_id", a.ClientID).
			Dur("elapsed", w.now().Sub(a.CreatedAt).Round(time.Minute)).
			Msg("⏱️ Ação continua pendente")
	}
	if len(actions) > 0 {
		log.Warn().Int("count", len(actions)).Msg("⚠️ Existem ações pendentes sem resultado")
	}
	return len(actions)
}
