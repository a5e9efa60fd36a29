package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain/models"
)

// DistributionRepository persists settlement distributions. Distributions
// are created once at settlement and never deleted; only their disbursement
// status (and the snapshot's error field) changes afterward.
type DistributionRepository interface {
	Create(ctx context.Context, tx DBTX, distribution *models.Distribution) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Distribution, error)
	ListByReservation(ctx context.Context, db DBTX, reservationID uuid.UUID) ([]*models.Distribution, error)

	// ExistsForReservation is the settlement idempotency guard.
	ExistsForReservation(ctx context.Context, db DBTX, reservationID uuid.UUID) (bool, error)

	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status models.DistributionStatus) error
	MarkCompleted(ctx context.Context, tx DBTX, id uuid.UUID, disbursementID string, disbursedAt time.Time) error

	// MarkFailed sets the status to failed and appends reason under the
	// snapshot's "error" key without touching any other snapshot field.
	MarkFailed(ctx context.Context, tx DBTX, id uuid.UUID, reason string) error

	// ListPendingNeedingDisbursement returns non-platform pending
	// distributions created before cutoff, for the reconciliation sweep.
	ListPendingNeedingDisbursement(ctx context.Context, db DBTX, cutoff time.Time, limit int32) ([]*models.Distribution, error)
}
