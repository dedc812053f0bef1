// followup-run roda um ciclo de acompanhamento fora do agendador, para teste
// operacional. -dry-run só lista quem seria contatado; -enqueue pede a
// execução ao servidor pela fila.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xavierca1/crm-followup/internal/config"
	"github.com/xavierca1/crm-followup/internal/entity"
	"github.com/xavierca1/crm-followup/internal/infra/database"
	"github.com/xavierca1/crm-followup/internal/infra/integration/whatsapp"
	"github.com/xavierca1/crm-followup/internal/infra/logging"
	"github.com/xavierca1/crm-followup/internal/infra/queue"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "apenas lista os clientes que seriam contatados")
	enqueue := flag.Bool("enqueue", false, "pede a execução ao servidor via RabbitMQ")
	mock := flag.Bool("mock", true, "usa o envio simulado em vez do WhatsApp real")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Configuração inválida")
	}
	logging.Init(logging.Options{Level: cfg.Log.Level, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *enqueue {
		if err := requestRun(ctx, cfg.RabbitMQURL); err != nil {
			log.Fatal().Err(err).Msg("❌ Falha ao enfileirar execução")
		}
		return
	}

	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao conectar no banco")
	}
	defer db.Close()

	loc := cfg.FollowUp.Location()
	clientRepo := database.NewClientRepository(db)
	selector := usecase.NewDueClientSelector(clientRepo, loc)

	if *dryRun {
		due, err := selector.SelectDue(ctx, cfg.FollowUp.ReferenceDays)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Falha ao selecionar clientes")
		}
		printDue(due)
		return
	}

	var notifier usecase.FollowUpNotifier
	if *mock {
		notifier, err = whatsapp.NewMockSender(cfg.FollowUp.MessageTemplate)
	} else {
		notifier, err = whatsapp.NewClient(whatsapp.Config{
			APIURL:          cfg.WhatsApp.APIURL,
			Token:           cfg.WhatsApp.Token,
			Timeout:         cfg.WhatsApp.Timeout,
			MessageTemplate: cfg.FollowUp.MessageTemplate,
		})
	}
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao configurar notificador")
	}

	cycle := usecase.NewFollowUpCycleUseCase(selector, clientRepo, database.NewActionRepository(db), notifier, usecase.FollowUpPolicy{
		ReferenceDays:  cfg.FollowUp.ReferenceDays,
		SecondWaveDays: cfg.FollowUp.SecondWaveDays,
		GatewayTimeout: cfg.FollowUp.GatewayTimeout,
	}, loc)

	report, err := cycle.Execute(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Ciclo falhou")
	}

	fmt.Printf("\n🏁 Ciclo %s\n", report.CycleID)
	fmt.Printf("   Tentativas: %d\n", report.Attempted)
	fmt.Printf("   Enviadas:   %d\n", report.Succeeded)
	fmt.Printf("   Falhas:     %d\n", report.Failed)
	fmt.Printf("   Duração:    %s\n", report.Duration())
}

func printDue(due []*entity.Client) {
	if len(due) == 0 {
		fmt.Println("📭 Nenhum cliente precisa de acompanhamento hoje")
		return
	}
	fmt.Printf("📋 %d cliente(s) para acompanhamento:\n", len(due))
	for _, c := range due {
		purchase := "-"
		if c.FirstPurchaseDate != nil {
			purchase = c.FirstPurchaseDate.String()
		}
		fmt.Printf("   #%d %s (%s) compra em %s\n", c.ID, c.DisplayName(), c.Phone, purchase)
	}
}

func requestRun(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("RABBITMQ_URL não definido")
	}
	rabbitMQ, err := queue.NewRabbitMQ(url)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	host, _ := os.Hostname()
	req := queue.RunRequest{RequestID: uuid.New().String(), RequestedBy: "followup-run@" + host}
	if err := queue.NewProducer(rabbitMQ.Ch).PublishRunRequest(ctx, req); err != nil {
		return err
	}
	fmt.Printf("📨 Execução %s enfileirada\n", req.RequestID)
	return nil
}
