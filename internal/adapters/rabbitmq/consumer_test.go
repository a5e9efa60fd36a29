package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurniadi/booking-service/test/mocks"
)

func taskBody(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	body, err := json.Marshal(DisbursementRequestedEvent{
		DistributionID: id.String(),
		EnqueuedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return body
}

func TestConsumer_HandleDelivery_Success(t *testing.T) {
	id := uuid.New()
	var got uuid.UUID
	consumer := NewConsumer(ConsumerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond},
		func(ctx context.Context, distributionID uuid.UUID) error {
			got = distributionID
			return nil
		}, mocks.NewMockLogger())

	err := consumer.handleDelivery(context.Background(), taskBody(t, id))

	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestConsumer_HandleDelivery_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	consumer := NewConsumer(ConsumerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond},
		func(ctx context.Context, distributionID uuid.UUID) error {
			attempts++
			if attempts < 3 {
				return errors.New("provider unreachable")
			}
			return nil
		}, mocks.NewMockLogger())

	err := consumer.handleDelivery(context.Background(), taskBody(t, uuid.New()))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestConsumer_HandleDelivery_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	consumer := NewConsumer(ConsumerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond},
		func(ctx context.Context, distributionID uuid.UUID) error {
			attempts++
			return errors.New("provider unreachable")
		}, mocks.NewMockLogger())

	err := consumer.handleDelivery(context.Background(), taskBody(t, uuid.New()))

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestConsumer_HandleDelivery_InvalidPayload(t *testing.T) {
	consumer := NewConsumer(ConsumerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond},
		func(ctx context.Context, distributionID uuid.UUID) error {
			t.Fatal("handler should not be called for malformed payloads")
			return nil
		}, mocks.NewMockLogger())

	err := consumer.handleDelivery(context.Background(), []byte("not json"))
	require.Error(t, err)

	err = consumer.handleDelivery(context.Background(), []byte(`{"distribution_id":"not-a-uuid"}`))
	require.Error(t, err)
}

func TestConsumer_HandleDelivery_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := NewConsumer(ConsumerConfig{MaxAttempts: 3, RetryDelay: time.Minute},
		func(ctx context.Context, distributionID uuid.UUID) error {
			cancel()
			return errors.New("provider unreachable")
		}, mocks.NewMockLogger())

	err := consumer.handleDelivery(ctx, taskBody(t, uuid.New()))

	require.ErrorIs(t, err, context.Canceled)
}
