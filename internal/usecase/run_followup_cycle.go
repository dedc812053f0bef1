package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/entity"
)

const (
	DefaultSecondWaveDays = 14
	DefaultGatewayTimeout = 15 * time.Second

	followUpContent    = "Mensagem de acompanhamento automática para %s"
	followUpStatusNote = "Acompanhamento enviado em %s"
)

type FollowUpPolicy struct {
	ReferenceDays  int
	SecondWaveDays int
	GatewayTimeout time.Duration
}

func DefaultFollowUpPolicy() FollowUpPolicy {
	return FollowUpPolicy{
		ReferenceDays:  DefaultReferenceDays,
		SecondWaveDays: DefaultSecondWaveDays,
		GatewayTimeout: DefaultGatewayTimeout,
	}
}

// FollowUpCycleUseCase roda um ciclo completo de acompanhamento. Não tem trava
// de reentrada; quem chama garante um ciclo por vez.
type FollowUpCycleUseCase struct {
	Selector DueSelector
	Clients  ClientScheduleUpdater
	Actions  ActionRecorder
	Notifier FollowUpNotifier
	Policy   FollowUpPolicy
	Location *time.Location
	Now      func() time.Time
}

func NewFollowUpCycleUseCase(
	selector DueSelector,
	clients ClientScheduleUpdater,
	actions ActionRecorder,
	notifier FollowUpNotifier,
	policy FollowUpPolicy,
	loc *time.Location,
) *FollowUpCycleUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &FollowUpCycleUseCase{
		Selector: selector,
		Clients:  clients,
		Actions:  actions,
		Notifier: notifier,
		Policy:   policy,
		Location: loc,
		Now:      time.Now,
	}
}

func (uc *FollowUpCycleUseCase) Execute(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{
		CycleID:   uuid.New().String(),
		StartedAt: uc.now(),
	}
	logger := log.With().Str("cycle_id", report.CycleID).Logger()
	logger.Info().Msg("🔄 Iniciando ciclo de acompanhamento")

	clients, err := uc.Selector.SelectDue(ctx, uc.Policy.ReferenceDays)
	if err != nil {
		report.FinishedAt = uc.now()
		logger.Error().Err(err).Msg("❌ Falha ao selecionar clientes")
		return report, &TechnicalError{
			Code:    "SELECTOR_FAILED",
			Message: "falha ao selecionar clientes para acompanhamento: " + err.Error(),
			Err:     err,
		}
	}

	if len(clients) == 0 {
		report.FinishedAt = uc.now()
		logger.Info().Msg("📭 Nenhum cliente precisa de acompanhamento hoje")
		return report, nil
	}

	report.Attempted = len(clients)
	logger.Info().Int("clients", len(clients)).Msg("📋 Clientes para acompanhamento")

	for _, c := range clients {
		if uc.processClient(ctx, c, logger) {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	report.FinishedAt = uc.now()
	logger.Info().
		Int("attempted", report.Attempted).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Dur("duration", report.Duration()).
		Msg("🏁 Ciclo de acompanhamento finalizado")

	return report, nil
}

func (uc *FollowUpCycleUseCase) processClient(ctx context.Context, c *entity.Client, parent zerolog.Logger) (ok bool) {
	logger := parent.With().Int64("client_id", c.ID).Str("client_name", c.DisplayName()).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("🔥 Pânico ao processar cliente")
			ok = false
		}
	}()

	now := uc.now()
	logger.Info().Msg("📧 Processando cliente")

	action, err := entity.NewPendingAction(c.ID, entity.ActionMessage, fmt.Sprintf(followUpContent, c.DisplayName()), now)
	if err != nil {
		logger.Error().Err(err).Msg("❌ Ação inválida")
		return false
	}
	if err := uc.Actions.Create(ctx, action); err != nil {
		logger.Error().Err(err).Msg("❌ Erro ao registrar ação, mensagem não enviada")
		return false
	}

	if sendErr := uc.send(ctx, c); sendErr != nil {
		logger.Error().Err(sendErr).Int64("action_id", action.ID).Msg("❌ Falha ao enviar mensagem")
		if _, err := uc.Actions.UpdateOutcome(ctx, action.ID, entity.OutcomeNoResponse); err != nil {
			logger.Error().Err(err).Int64("action_id", action.ID).Msg("❌ Erro ao atualizar resultado da ação")
		}
		return false
	}

	if _, err := uc.Actions.UpdateOutcome(ctx, action.ID, entity.OutcomeYes); err != nil {
		logger.Error().Err(err).Int64("action_id", action.ID).Msg("❌ Erro ao atualizar resultado da ação")
	}
	if _, err := uc.Clients.UpdateStatus(ctx, c.ID, AppendFollowUpNote(c.Status, now.In(uc.Location))); err != nil {
		logger.Error().Err(err).Msg("❌ Erro ao atualizar status do cliente")
	}
	uc.reschedule(ctx, c, now, logger)

	logger.Info().Int64("action_id", action.ID).Msg("✅ Acompanhamento enviado")
	return true
}

// send limita a chamada ao gateway a Policy.GatewayTimeout, mesmo que o
// notificador ignore o contexto.
func (uc *FollowUpCycleUseCase) send(ctx context.Context, c *entity.Client) error {
	timeout := uc.Policy.GatewayTimeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic no gateway: %v", r)
			}
		}()
		done <- uc.Notifier.SendFollowUp(sendCtx, c)
	}()

	select {
	case err := <-done:
		return err
	case <-sendCtx.Done():
		return fmt.Errorf("gateway não respondeu: %w", sendCtx.Err())
	}
}

func (uc *FollowUpCycleUseCase) reschedule(ctx context.Context, c *entity.Client, now time.Time, logger zerolog.Logger) {
	if c.FirstPurchaseDate == nil || c.FirstPurchaseDate.IsBlank() {
		logger.Warn().Msg("⚠️ Cliente sem data de compra, próxima ação não agendada")
		return
	}
	purchase, err := c.FirstPurchaseDate.Parse(uc.Location)
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ Data de compra ilegível, próxima ação não agendada")
		return
	}

	// Contado a partir da compra, não de hoje.
	next := purchase.AddDate(0, 0, uc.Policy.SecondWaveDays)
	if _, err := uc.Clients.UpdateNextAction(ctx, c.ID, next, now); err != nil {
		logger.Error().Err(err).Msg("❌ Erro ao agendar próxima ação")
		return
	}
	logger.Debug().Time("next_action", next).Msg("📅 Próxima ação agendada")
}

func (uc *FollowUpCycleUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// AppendFollowUpNote acrescenta a marca de envio ao status livre do cliente.
func AppendFollowUpNote(status string, at time.Time) string {
	note := fmt.Sprintf(followUpStatusNote, at.Format("02/01/2006"))
	if status == "" {
		return note
	}
	return status + " | " + note
}
