package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/infra/scheduler"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

type RunRequest struct {
	RequestID   string `json:"request_id"`
	RequestedBy string `json:"requested_by"`
}

// CycleRunner dispara um ciclo fora do horário agendado.
type CycleRunner interface {
	RunNow(ctx context.Context) (*usecase.CycleReport, error)
}

// Worker consome pedidos de execução manual do ciclo de acompanhamento.
type Worker struct {
	Channel *amqp.Channel
	Runner  CycleRunner
}

func NewWorker(ch *amqp.Channel, runner CycleRunner) *Worker {
	return &Worker{Channel: ch, Runner: runner}
}

// Start registra o consumidor e processa até ctx acabar ou o canal fechar.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.Channel.Consume(
		RunRequestQueue,
		"followup-run-worker",
		false, // auto-ack (manual é mais seguro)
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Info().Str("queue", RunRequestQueue).Msg(" [*] Worker rodando e aguardando pedidos")
	return w.consume(ctx, msgs)
}

func (w *Worker) consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal de consumo fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var req RunRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		log.Error().Err(err).Msg("❌ [WORKER] JSON inválido")
		// Mensagem malformada vai para a DLQ.
		d.Nack(false, false)
		return
	}

	logger := log.With().Str("request_id", req.RequestID).Str("requested_by", req.RequestedBy).Logger()
	logger.Info().Msg("📥 [WORKER] Pedido de execução recebido")

	// O ciclo termina mesmo se o consumidor for encerrado no meio dele.
	report, err := w.Runner.RunNow(context.WithoutCancel(ctx))
	switch {
	case err == nil:
		logger.Info().Str("cycle_id", report.CycleID).Int("attempted", report.Attempted).Msg("✅ [WORKER] Ciclo executado")
		d.Ack(false)
	case errors.Is(err, scheduler.ErrCycleInFlight):
		// Não reenfileira: pedidos sobrepostos são descartados.
		logger.Warn().Msg("⏭️ [WORKER] Ciclo já em andamento, pedido descartado")
		d.Ack(false)
	default:
		logger.Error().Err(err).Msg("❌ [WORKER] Falha no ciclo")
		d.Nack(false, false)
	}
}
