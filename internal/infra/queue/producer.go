package queue

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

// channelPublisher é o pedaço do *amqp.Channel que o produtor usa.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch channelPublisher
}

func NewProducer(ch channelPublisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishCycleReport(ctx context.Context, report usecase.CycleReport) error {
	return p.publish(ctx, ReportKey, report.CycleID, report)
}

func (p *RabbitMQProducer) PublishClientRegistered(ctx context.Context, event usecase.ClientRegisteredEvent) error {
	return p.publish(ctx, RegisteredKey, event.EventID, event)
}

func (p *RabbitMQProducer) PublishRunRequest(ctx context.Context, req RunRequest) error {
	return p.publish(ctx, RunRequestKey, req.RequestID, req)
}

func (p *RabbitMQProducer) publish(ctx context.Context, key, messageID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		key,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    messageID,
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
