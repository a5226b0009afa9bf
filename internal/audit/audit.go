package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"parkingconsole/internal/config"
	"parkingconsole/internal/metrics"
)

// Event describes one successful mutation made through the console
type Event struct {
	Actor    string    `json:"actor"`
	Action   string    `json:"action"`
	Resource string    `json:"resource"`
	ID       string    `json:"id,omitempty"`
	At       time.Time `json:"at"`
}

// RoutingKey is "<resource>.<action>", e.g. "users.create"
func (e Event) RoutingKey() string {
	return e.Resource + "." + e.Action
}

// Publisher ships audit events somewhere durable
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// New returns an AMQP publisher, or Nop when url is empty
func New(url, exchange string, m *metrics.Metrics) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	return NewAMQPPublisher(url, exchange, m)
}

// AMQPPublisher publishes events as persistent JSON messages on a topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	cb       *gobreaker.CircuitBreaker
	metrics  *metrics.Metrics
}

func NewAMQPPublisher(url, exchange string, m *metrics.Metrics) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open audit channel: %w", err)
	}

	// Declare the exchange (idempotent)
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare audit exchange: %w", err)
	}

	cb := config.NewCircuitBreaker("Audit-Publisher", func(to gobreaker.State) {
		m.SetBreakerState("Audit-Publisher", to)
	})

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		cb:       cb,
		metrics:  m,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(ctx,
			p.exchange,
			event.RoutingKey(),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    uuid.NewString(),
				Timestamp:    event.At,
				Body:         body,
			})
	})
	p.metrics.AuditPublished(err == nil)
	if err != nil {
		return fmt.Errorf("failed to publish audit event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
