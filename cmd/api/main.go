package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xavierca1/crm-followup/internal/config"
	"github.com/xavierca1/crm-followup/internal/infra/database"
	"github.com/xavierca1/crm-followup/internal/infra/http/handlers"
	"github.com/xavierca1/crm-followup/internal/infra/integration/whatsapp"
	"github.com/xavierca1/crm-followup/internal/infra/logging"
	"github.com/xavierca1/crm-followup/internal/infra/mail"
	"github.com/xavierca1/crm-followup/internal/infra/queue"
	"github.com/xavierca1/crm-followup/internal/infra/scheduler"
	"github.com/xavierca1/crm-followup/internal/infra/worker"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Configuração inválida")
	}

	logCloser := logging.Init(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao conectar no banco")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao criar schema")
	}

	clientRepo := database.NewClientRepository(db)
	actionRepo := database.NewActionRepository(db)

	// 2. Mensageria (opcional)
	var (
		rabbitMQ        *queue.RabbitMQ
		producer        *queue.RabbitMQProducer
		eventPublisher  usecase.ClientEventPublisher
		reportPublisher usecase.CycleReportPublisher
		rabbitHealth    handlers.ConnectionChecker
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ RabbitMQ indisponível, eventos desativados")
		} else {
			defer rabbitMQ.Close()
			producer = queue.NewProducer(rabbitMQ.Ch)
			eventPublisher = producer
			reportPublisher = producer
			rabbitHealth = rabbitMQ
		}
	} else {
		log.Info().Msg("ℹ️ RABBITMQ_URL não definido, eventos desativados")
	}

	// 3. Gateway de notificação
	notifier := buildNotifier(cfg)

	// 4. UseCases
	loc := cfg.FollowUp.Location()
	registerUC := usecase.NewRegisterClientUseCase(clientRepo, eventPublisher, loc)
	selector := usecase.NewDueClientSelector(clientRepo, loc)
	cycleUC := usecase.NewFollowUpCycleUseCase(selector, clientRepo, actionRepo, notifier, usecase.FollowUpPolicy{
		ReferenceDays:  cfg.FollowUp.ReferenceDays,
		SecondWaveDays: cfg.FollowUp.SecondWaveDays,
		GatewayTimeout: cfg.FollowUp.GatewayTimeout,
	}, loc)

	// 5. Agendador
	driver := scheduler.NewDriver(cycleUC, scheduler.Config{
		Spec:      cfg.FollowUp.CronSpec,
		Location:  loc,
		Publisher: reportPublisher,
	})
	if err := driver.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao iniciar agendador")
	}

	// 6. Workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	staleWorker := worker.NewStaleActionWorker(actionRepo, cfg.FollowUp.StaleAfter, 0)
	go staleWorker.Start(workerCtx)

	if rabbitMQ != nil {
		runWorker := queue.NewWorker(rabbitMQ.Ch, driver)
		go func() {
			if err := runWorker.Start(workerCtx); err != nil {
				log.Error().Err(err).Msg("❌ Consumidor de execuções manuais parou")
			}
		}()
	}

	// 7. HTTP
	router := newRouter(routerConfig{
		APIToken:         cfg.APISecretToken,
		CORSOrigins:      cfg.CORSOrigins,
		WebhookRateLimit: cfg.WebhookRateLimit,
	}, routes{
		Health:    handlers.NewHealthHandler(db, rabbitHealth, driver),
		Webhook:   handlers.NewWebhookHandler(registerUC),
		Clients:   handlers.NewClientHandler(clientRepo, actionRepo, registerUC),
		Actions:   handlers.NewActionHandler(actionRepo),
		Dashboard: handlers.NewDashboardHandler(clientRepo),
		Scheduler: handlers.NewSchedulerHandler(driver),
	})

	if cfg.APISecretToken == "" {
		log.Warn().Msg("⚠️ API_SECRET_TOKEN não definido, rotas /api vão recusar todas as chamadas")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("🔥 Servidor CRM rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Servidor HTTP caiu")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Erro ao encerrar servidor HTTP")
	}
	cancelWorkers()
	if err := driver.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Ciclo em andamento não terminou a tempo")
	}
	log.Info().Msg("👋 Até logo")
}

// buildNotifier escolhe o gateway. Credenciais ausentes não derrubam o
// serviço: cai no modo simulado.
func buildNotifier(cfg *config.Config) usecase.FollowUpNotifier {
	template := cfg.FollowUp.MessageTemplate

	if cfg.Notifier == config.NotifierEmail {
		if cfg.Mail.Host != "" {
			sender, err := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, template)
			if err != nil {
				log.Fatal().Err(err).Msg("❌ Falha ao configurar e-mail")
			}
			log.Info().Str("host", cfg.Mail.Host).Msg("📧 Notificações por e-mail")
			return sender
		}
		log.Warn().Msg("⚠️ MAIL_HOST não definido, usando envio simulado")
		return mustMockSender(template)
	}

	if cfg.WhatsApp.MockMode {
		log.Info().Msg("🧪 WhatsApp em modo simulado")
		return mustMockSender(template)
	}

	client, err := whatsapp.NewClient(whatsapp.Config{
		APIURL:          cfg.WhatsApp.APIURL,
		Token:           cfg.WhatsApp.Token,
		Timeout:         cfg.WhatsApp.Timeout,
		MessageTemplate: template,
	})
	if errors.Is(err, whatsapp.ErrNotConfigured) {
		log.Warn().Msg("⚠️ Credenciais do WhatsApp ausentes, usando envio simulado")
		return mustMockSender(template)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao configurar WhatsApp")
	}
	log.Info().Msg("📱 WhatsApp real configurado")
	return client
}

func mustMockSender(template string) *whatsapp.MockSender {
	sender, err := whatsapp.NewMockSender(template)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Template de mensagem inválido")
	}
	return sender
}
