package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// Publisher implements DisbursementQueue over RabbitMQ. Messages are
// persistent and the queue is durable so enqueued tasks survive broker
// restarts.
type Publisher struct {
	conn   *amqp.Connection
	logger ports.Logger
}

// NewPublisher dials the broker and declares the disbursement queue.
func NewPublisher(url string, logger ports.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	// Declare up front so a misconfigured broker fails at startup, not
	// on the first settlement.
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(DisbursementQueueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	return &Publisher{conn: conn, logger: logger}, nil
}

// Enqueue publishes a disbursement task for the given distribution.
func (p *Publisher) Enqueue(ctx context.Context, distributionID uuid.UUID) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel open: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(DisbursementRequestedEvent{
		DistributionID: distributionID.String(),
		EnqueuedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal disbursement event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		DisbursementQueueName, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.logger.Info("Disbursement task enqueued",
		ports.String("distribution_id", distributionID.String()),
	)
	return nil
}

// Ping reports whether the broker connection is still usable.
func (p *Publisher) Ping() error {
	if p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

// Close closes the broker connection.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
