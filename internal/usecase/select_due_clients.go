package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
)

const DefaultReferenceDays = 7

// DueClientSelector decide quem precisa de acompanhamento hoje. Só lê.
type DueClientSelector struct {
	Repo     DueClientFinder
	Location *time.Location
	Now      func() time.Time
}

func NewDueClientSelector(repo DueClientFinder, loc *time.Location) *DueClientSelector {
	if loc == nil {
		loc = time.Local
	}
	return &DueClientSelector{Repo: repo, Location: loc, Now: time.Now}
}

// SelectDue devolve os clientes cuja primeira compra tem pelo menos referenceDays
// dias de calendário e cuja próxima ação está vencida ou ausente.
// Valores negativos usam DefaultReferenceDays.
func (s *DueClientSelector) SelectDue(ctx context.Context, referenceDays int) ([]*entity.Client, error) {
	if referenceDays < 0 {
		referenceDays = DefaultReferenceDays
	}

	now := s.now().In(s.Location)
	today := calendarDay(now)
	cutoff := time.Date(now.Year(), now.Month(), now.Day()-referenceDays, 0, 0, 0, 0, s.Location)

	candidates, err := s.Repo.FindWithPurchaseBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("buscar clientes com compra até %s: %w", cutoff.Format("2006-01-02"), err)
	}

	due := make([]*entity.Client, 0, len(candidates))
	for _, c := range candidates {
		if c.FirstPurchaseDate == nil || c.FirstPurchaseDate.IsBlank() {
			continue
		}
		purchase, err := c.FirstPurchaseDate.Parse(s.Location)
		if err != nil {
			log.Warn().
				Int64("client_id", c.ID).
				Str("first_purchase_date", c.FirstPurchaseDate.String()).
				Msg("⚠️ Data de compra ilegível, cliente ignorado")
			continue
		}

		days := int(today.Sub(calendarDay(purchase.In(s.Location))).Hours() / 24)
		if days < 0 {
			log.Warn().Int64("client_id", c.ID).Int("days", days).Msg("⚠️ Data de compra no futuro, cliente ignorado")
			continue
		}
		if days < referenceDays {
			continue
		}

		if c.NextAction == nil || c.NextAction.IsBlank() {
			due = append(due, c)
			continue
		}
		next, err := c.NextAction.Parse(s.Location)
		if err != nil {
			// Próxima ação ilegível não pode travar o acompanhamento.
			log.Warn().
				Int64("client_id", c.ID).
				Str("next_action", c.NextAction.String()).
				Msg("⚠️ Próxima ação ilegível, cliente considerado pendente")
			due = append(due, c)
			continue
		}
		if !next.After(now) {
			due = append(due, c)
		}
	}

	log.Debug().Int("candidates", len(candidates)).Int("due", len(due)).Msg("🔎 Seleção de clientes concluída")
	return due, nil
}

func (s *DueClientSelector) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// calendarDay normaliza para meia-noite UTC do mesmo dia civil, assim a
// diferença entre dois dias não sofre com horário de verão.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
