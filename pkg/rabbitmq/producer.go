/**
 * @description
 * This package wraps the RabbitMQ client for the overdraft pipeline. The
 * producer publishes JSON messages to durable topic exchanges with publisher
 * confirms enabled, so callers learn whether the broker acked or nacked each
 * message before they move on.
 *
 * @dependencies
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishNacked is returned when the broker negatively acknowledges a
// confirmed publish. The message was rejected, not lost in transit.
var ErrPublishNacked = errors.New("publish nacked by broker")

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey, correlationID string, body interface{}) error
	Close()
}

// Producer holds the RabbitMQ connection and a confirm-mode channel.
type Producer struct {
	conn *amqp.Connection

	mu      sync.Mutex
	channel *amqp.Channel
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", fmt.Errorf("invalid AMQP scheme: %s", u.Scheme)
	}
	return clean, nil
}

// NewProducer dials RabbitMQ and opens a channel in confirm mode.
func NewProducer(amqpURL string) (*Producer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Bounded dial timeout so startup does not hang indefinitely.
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &Producer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON message to a durable topic exchange and waits for the
// broker's confirmation. It returns ErrPublishNacked when the broker rejects
// the message, or the transport error when the publish itself fails. The
// correlation ID rides on the message so consumers can tie their side effects
// back to the originating operation.
func (p *Producer) Publish(ctx context.Context, exchange, routingKey, correlationID string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", exchange, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	confirmation, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			CorrelationId: correlationID,
			Body:          jsonBody,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", exchange, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm from %s: %w", exchange, err)
	}
	if !acked {
		return fmt.Errorf("%s/%s: %w", exchange, routingKey, ErrPublishNacked)
	}
	return nil
}

// Close gracefully closes the channel and connection to RabbitMQ.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
