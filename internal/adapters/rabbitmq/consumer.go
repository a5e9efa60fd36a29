package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kurniadi/booking-service/internal/domain/ports"
	"github.com/kurniadi/booking-service/pkg/resilience"
)

// TaskHandler processes one disbursement task. Returning an error marks
// the attempt as failed and triggers the retry policy; permanent
// outcomes (provider rejections recorded on the distribution) should
// return nil so the message is acked.
type TaskHandler func(ctx context.Context, distributionID uuid.UUID) error

// ConsumerConfig controls the disbursement consumer.
type ConsumerConfig struct {
	URL         string
	Prefetch    int
	MaxAttempts int
	RetryDelay  time.Duration
}

// DefaultConsumerConfig returns the standard retry policy: three
// attempts spaced a minute apart.
func DefaultConsumerConfig(url string) ConsumerConfig {
	return ConsumerConfig{
		URL:         url,
		Prefetch:    10,
		MaxAttempts: 3,
		RetryDelay:  60 * time.Second,
	}
}

// Consumer reads disbursement tasks from the broker and dispatches them
// to the worker.
type Consumer struct {
	config       ConsumerConfig
	handler      TaskHandler
	logger       ports.Logger
	retryBackoff resilience.BackoffStrategy
}

// NewConsumer creates a consumer; call Run to start it.
func NewConsumer(config ConsumerConfig, handler TaskHandler, logger ports.Logger) *Consumer {
	if config.Prefetch <= 0 {
		config.Prefetch = 10
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 60 * time.Second
	}
	return &Consumer{
		config:       config,
		handler:      handler,
		logger:       logger,
		retryBackoff: &resilience.FixedBackoff{Delay: config.RetryDelay},
	}
}

// Run connects to the broker and consumes until the context is
// cancelled. Connection failures trigger a reconnect loop with
// exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := resilience.BrokerBackoff()
	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, err := amqp.Dial(c.config.URL)
		if err != nil {
			delay := backoff.NextDelay(attempt)
			attempt++
			c.logger.Error("Failed to dial broker, will retry",
				ports.Err(err),
				ports.String("backoff", delay.String()),
			)
			if !sleepCtx(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		attempt = 0

		if err := c.consumeLoop(ctx, conn); err != nil {
			conn.Close()
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Warn("Consume loop ended, reconnecting", ports.Err(err))
			if !sleepCtx(ctx, 2*time.Second) {
				return ctx.Err()
			}
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(c.config.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	if _, err := ch.QueueDeclare(DisbursementQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(DisbursementQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleDelivery(ctx, d.Body); err != nil {
				// Exhausted retries or a poison message. Drop it so
				// the queue does not wedge; the reconciliation sweep
				// re-enqueues pending distributions later.
				c.logger.Error("Dropping disbursement task", ports.Err(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, body []byte) error {
	var ev DisbursementRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal task: %w", err)
	}

	distributionID, err := uuid.Parse(ev.DistributionID)
	if err != nil {
		return fmt.Errorf("invalid distribution id %q: %w", ev.DistributionID, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		lastErr = c.handler(ctx, distributionID)
		if lastErr == nil {
			return nil
		}

		c.logger.Warn("Disbursement attempt failed",
			ports.String("distribution_id", ev.DistributionID),
			ports.Int("attempt", attempt),
			ports.Int("max_attempts", c.config.MaxAttempts),
			ports.Err(lastErr),
		)

		if attempt < c.config.MaxAttempts {
			if !sleepCtx(ctx, c.retryBackoff.NextDelay(attempt)) {
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("disbursement failed after %d attempts: %w", c.config.MaxAttempts, lastErr)
}

// sleepCtx sleeps for d, returning false if the context was cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
