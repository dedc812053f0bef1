package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/xavierca1/crm-followup/internal/infra/metrics"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

const (
	DefaultSpec = "0 9 * * *"
	JobName     = "Automação Diária - Envio de Mensagens"
)

var (
	ErrDriverStopped = errors.New("agendador já foi encerrado")
	ErrCycleInFlight = errors.New("ciclo de acompanhamento já em andamento")
)

type State string

const (
	StateNotInitialized State = "not_initialized"
	StateRunning        State = "running"
	StateStopped        State = "stopped"
)

type CycleExecutor interface {
	Execute(ctx context.Context) (*usecase.CycleReport, error)
}

type Config struct {
	Spec      string
	Location  *time.Location
	Publisher usecase.CycleReportPublisher // opcional
}

type JobStatus struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	NextRun *time.Time `json:"next_run"`
}

type Status struct {
	Status     State                `json:"status"`
	Jobs       []JobStatus          `json:"jobs"`
	InFlight   bool                 `json:"in_flight"`
	LastReport *usecase.CycleReport `json:"last_report,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
}

// Driver dispara o ciclo diário e garante no máximo um ciclo por vez,
// seja pelo cron ou por execução manual.
type Driver struct {
	executor CycleExecutor
	cfg      Config

	mu         sync.Mutex
	state      State
	cron       *cron.Cron
	entryID    cron.EntryID
	lastReport *usecase.CycleReport
	lastErr    string

	inFlight atomic.Bool
	running  sync.WaitGroup
}

func NewDriver(executor CycleExecutor, cfg Config) *Driver {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Driver{executor: executor, cfg: cfg, state: StateNotInitialized}
}

// Initialize registra o job diário e liga o cron. Chamar de novo com o
// agendador rodando só gera um aviso.
func (d *Driver) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case StateRunning:
		log.Warn().Msg("⚠️ Agendador já estava rodando")
		return nil
	case StateStopped:
		return ErrDriverStopped
	}

	c := cron.New(
		cron.WithLocation(d.cfg.Location),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{})),
	)
	id, err := c.AddFunc(d.cfg.Spec, d.trigger)
	if err != nil {
		return fmt.Errorf("expressão cron inválida %q: %w", d.cfg.Spec, err)
	}
	c.Start()

	d.cron = c
	d.entryID = id
	d.state = StateRunning

	log.Info().
		Str("job", JobName).
		Str("spec", d.cfg.Spec).
		Str("timezone", d.cfg.Location.String()).
		Time("next_run", c.Entry(id).Next).
		Msg("⏰ Agendador iniciado")
	return nil
}

func (d *Driver) trigger() {
	log.Info().Str("job", JobName).Msg("🚀 Executando tarefa agendada")
	if _, err := d.run(context.Background()); err != nil && !errors.Is(err, ErrCycleInFlight) {
		log.Error().Err(err).Msg("❌ Tarefa agendada terminou com erro")
	}
}

// RunNow roda um ciclo na hora e espera ele terminar.
func (d *Driver) RunNow(ctx context.Context) (*usecase.CycleReport, error) {
	log.Info().Msg("▶️ Execução manual do ciclo solicitada")
	return d.run(ctx)
}

func (d *Driver) run(ctx context.Context) (*usecase.CycleReport, error) {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return nil, ErrDriverStopped
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		d.mu.Unlock()
		metrics.RecordCycleSkipped()
		log.Warn().Msg("⏭️ Ciclo anterior ainda em andamento, disparo ignorado")
		return nil, ErrCycleInFlight
	}
	d.running.Add(1)
	d.mu.Unlock()

	defer func() {
		d.inFlight.Store(false)
		d.running.Done()
	}()

	start := time.Now()
	report, err := d.execute(ctx)
	d.record(ctx, report, err, time.Since(start))
	return report, err
}

func (d *Driver) execute(ctx context.Context) (report *usecase.CycleReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic no ciclo de acompanhamento: %v", r)
		}
	}()
	return d.executor.Execute(ctx)
}

func (d *Driver) record(ctx context.Context, report *usecase.CycleReport, err error, elapsed time.Duration) {
	result := "success"
	succeeded, failed := 0, 0
	if err != nil {
		result = "error"
	}
	if report != nil {
		succeeded, failed = report.Succeeded, report.Failed
	}
	metrics.RecordCycle(result, elapsed, succeeded, failed)

	d.mu.Lock()
	if report != nil {
		r := *report
		d.lastReport = &r
	}
	d.lastErr = ""
	if err != nil {
		d.lastErr = err.Error()
	}
	d.mu.Unlock()

	if err != nil || report == nil || d.cfg.Publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if perr := d.cfg.Publisher.PublishCycleReport(pubCtx, *report); perr != nil {
		log.Warn().Err(perr).Str("cycle_id", report.CycleID).Msg("⚠️ Falha ao publicar resumo do ciclo")
	}
}

func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := Status{
		Status:    d.state,
		Jobs:      []JobStatus{},
		InFlight:  d.inFlight.Load(),
		LastError: d.lastErr,
	}
	if d.lastReport != nil {
		r := *d.lastReport
		st.LastReport = &r
	}
	if d.state == StateRunning {
		job := JobStatus{ID: int(d.entryID), Name: JobName}
		if next := d.cron.Entry(d.entryID).Next; !next.IsZero() {
			job.NextRun = &next
		}
		st.Jobs = append(st.Jobs, job)
	}
	return st
}

// Shutdown para o cron e espera o ciclo em andamento, limitado por ctx.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateRunning {
		d.mu.Unlock()
		return nil
	}
	d.state = StateStopped
	c := d.cron
	d.mu.Unlock()

	stopped := c.Stop()
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		d.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("🛑 Agendador finalizado")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ciclo ainda em andamento no encerramento: %w", ctx.Err())
	}
}
