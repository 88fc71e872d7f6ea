package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	amqp "github.com/streadway/amqp"
)

const (
	// ReceiptQueue carries receipt lifecycle events.
	ReceiptQueue = "receipt_queue"
	// EventReceiptCreated is published once per committed checkout.
	EventReceiptCreated = "receipt.created"
)

// ReceiptLineEvent describes one purchased product.
type ReceiptLineEvent struct {
	ProductID      uint    `json:"product_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	RemainingStock int     `json:"remaining_stock"`
}

// ReceiptEvent is the message body published on ReceiptQueue.
type ReceiptEvent struct {
	EventID    string             `json:"event_id"`
	Type       string             `json:"type"`
	ReceiptID  uint               `json:"receipt_id"`
	UserID     uint               `json:"user_id"`
	Total      float64            `json:"total"`
	OccurredAt time.Time          `json:"occurred_at"`
	Lines      []ReceiptLineEvent `json:"lines"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // guards channel publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		ReceiptQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

// NewClient connects to RabbitMQ, opens a channel and declares the receipt queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", ReceiptQueue, err)
	}

	log.Info().Str("queue", ReceiptQueue).Msg("RabbitMQ client connected")
	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishReceiptCreated publishes a persistent JSON event on the receipt queue.
func (c *Client) PublishReceiptCreated(ctx context.Context, event ReceiptEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",           // default exchange
		ReceiptQueue, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    event.EventID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish receipt event: %w", err)
	}
	return nil
}

// ConsumeReceiptEvents delivers decoded receipt events to handler until the
// channel closes. Handler errors requeue the message; undecodable messages are dropped.
func (c *Client) ConsumeReceiptEvents(handler func(ReceiptEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info().Str("queue", queue.Name).Msg("waiting for receipt events")
	go func() {
		for msg := range msgs {
			HandleDelivery(msg, handler)
		}
	}()
	return nil
}

// HandleDelivery decodes one delivery, runs handler and acknowledges accordingly.
func HandleDelivery(msg amqp.Delivery, handler func(ReceiptEvent) error) {
	var event ReceiptEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("dropping malformed receipt event")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error().Err(nackErr).Msg("failed to nack message")
		}
		return
	}

	if err := handler(event); err != nil {
		log.Error().Err(err).Str("event_id", event.EventID).Msg("error processing receipt event")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			log.Error().Err(nackErr).Msg("failed to nack message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error().Err(ackErr).Msg("failed to ack message")
	}
}
