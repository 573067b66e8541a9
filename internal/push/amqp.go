package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKey is the routing key of every published push.
const RoutingKey = "driver.notification"

// Message is the JSON body published for each push.
type Message struct {
	UserID int64     `json:"user_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// publisher is the part of *amqp.Channel AMQP uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP hands pushes to a message broker for an external delivery worker.
type AMQP struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
	now      func() time.Time
}

// DialAMQP connects to the broker and declares a durable topic exchange.
func DialAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("push.DialAMQP: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("push.DialAMQP: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("push.DialAMQP: declare exchange: %w", err)
	}
	return &AMQP{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

// Notify publishes one persistent message per push.
func (a *AMQP) Notify(ctx context.Context, userID int64, title, body string) error {
	payload, err := json.Marshal(Message{UserID: userID, Title: title, Body: body, SentAt: a.now().UTC()})
	if err != nil {
		return fmt.Errorf("push.AMQP.Notify: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = a.ch.PublishWithContext(ctx, a.exchange, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    a.now(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("push.AMQP.Notify: %w", err)
	}
	return nil
}

// Close shuts the broker connection down.
func (a *AMQP) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
