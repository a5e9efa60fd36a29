package ports

import (
	"context"

	"github.com/google/uuid"
)

// DisbursementQueue enqueues asynchronous disbursement tasks. Delivery is
// at-least-once with no ordering guarantee between distributions; the worker
// re-checks distribution state before doing anything.
type DisbursementQueue interface {
	Enqueue(ctx context.Context, distributionID uuid.UUID) error
}
