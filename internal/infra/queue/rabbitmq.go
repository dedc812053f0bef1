package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.crm"
	DLXName      = "ex.crm.dlx" // Dead Letter Exchange

	ReportQueue      = "q.followup.reports"
	RegisteredQueue  = "q.clients.registered"
	RunRequestQueue  = "q.followup.run-requests"
	ReportKey        = "k.followup.report"
	RegisteredKey    = "k.client.registered"
	RunRequestKey    = "k.followup.run"
	deadLetterSuffix = ".dlq"
)

type binding struct {
	queue string
	key   string
}

var bindings = []binding{
	{ReportQueue, ReportKey},
	{RegisteredQueue, RegisteredKey},
	{RunRequestQueue, RunRequestKey},
}

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar topologia: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// setupTopology declara exchange principal, DLX e uma fila (com DLQ) por evento.
func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	for _, b := range bindings {
		dlq := b.queue + deadLetterSuffix
		if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(dlq, b.key, DLXName, false, nil); err != nil {
			return err
		}

		args := amqp.Table{
			"x-dead-letter-exchange":    DLXName, // Se der Nack, manda pra DLX
			"x-dead-letter-routing-key": b.key,
		}
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, args); err != nil {
			return err
		}
		if err := ch.QueueBind(b.queue, b.key, ExchangeName, false, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *RabbitMQ) IsClosed() bool {
	return r == nil || r.Conn == nil || r.Conn.IsClosed()
}

func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}
