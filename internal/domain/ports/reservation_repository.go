package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain/models"
)

// ReservationRepository persists reservations and their line items.
// Methods accepting a DBTX run against the given transaction when non-nil,
// otherwise against the pool.
type ReservationRepository interface {
	Create(ctx context.Context, tx DBTX, reservation *models.Reservation) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Reservation, error)
	GetByCode(ctx context.Context, db DBTX, tenantID uuid.UUID, code string) (*models.Reservation, error)
	CodeExists(ctx context.Context, db DBTX, tenantID uuid.UUID, code string) (bool, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status models.ReservationStatus) error
	UpdateTotals(ctx context.Context, tx DBTX, reservation *models.Reservation) error
}

// ReservationItemRepository persists reservation line items. Items are never
// deleted; cancellation is a status flip so settlement and audit trails stay
// intact.
type ReservationItemRepository interface {
	Create(ctx context.Context, tx DBTX, item *models.ReservationItem) error
	GetByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.ReservationItem, error)
	ListByReservation(ctx context.Context, db DBTX, reservationID uuid.UUID) ([]*models.ReservationItem, error)
	UpdateStatus(ctx context.Context, tx DBTX, id uuid.UUID, status models.ItemStatus) error
}
