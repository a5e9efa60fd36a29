package postgres

import (
	"errors"
	"fmt"

	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// ReservationRepository implements ports.ReservationRepository using pgx
type ReservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db ports.DBPort) *ReservationRepository {
	return &ReservationRepository{pool: db.GetDB()}
}

func (r *ReservationRepository) q(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

const reservationColumns = `id, tenant_id, code, guest_name, guest_email, guest_phone,
	status, subtotal, discount_amount, tax_amount, total_amount, currency, notes,
	created_at, updated_at`

// Create inserts a new reservation
func (r *ReservationRepository) Create(ctx context.Context, tx ports.DBTX, reservation *models.Reservation) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO reservations (
			id, tenant_id, code, guest_name, guest_email, guest_phone,
			status, subtotal, discount_amount, tax_amount, total_amount,
			currency, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		reservation.ID,
		reservation.TenantID,
		reservation.Code,
		reservation.GuestName,
		nullText(reservation.GuestEmail),
		nullText(reservation.GuestPhone),
		string(reservation.Status),
		reservation.Subtotal,
		reservation.DiscountAmount,
		reservation.TaxAmount,
		reservation.TotalAmount,
		reservation.Currency,
		nullText(reservation.Notes),
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// GetByID retrieves a reservation by its ID
func (r *ReservationRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Reservation, error) {
	row := r.q(db).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return r.scanReservation(row)
}

// GetByCode retrieves a reservation by its human-readable code within a tenant
func (r *ReservationRepository) GetByCode(ctx context.Context, db ports.DBTX, tenantID uuid.UUID, code string) (*models.Reservation, error) {
	row := r.q(db).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE tenant_id = $1 AND code = $2`,
		tenantID, code)
	return r.scanReservation(row)
}

// CodeExists reports whether a reservation code is already taken within a tenant
func (r *ReservationRepository) CodeExists(ctx context.Context, db ports.DBTX, tenantID uuid.UUID, code string) (bool, error) {
	var exists bool
	err := r.q(db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE tenant_id = $1 AND code = $2)`,
		tenantID, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reservation code: %w", err)
	}
	return exists, nil
}

// UpdateStatus updates the status of a reservation
func (r *ReservationRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.ReservationStatus) error {
	tag, err := r.q(tx).Exec(ctx,
		`UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// UpdateTotals persists recalculated monetary totals
func (r *ReservationRepository) UpdateTotals(ctx context.Context, tx ports.DBTX, reservation *models.Reservation) error {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE reservations
		SET subtotal = $2, discount_amount = $3, tax_amount = $4,
			total_amount = $5, updated_at = now()
		WHERE id = $1`,
		reservation.ID,
		reservation.Subtotal,
		reservation.DiscountAmount,
		reservation.TaxAmount,
		reservation.TotalAmount,
	)
	if err != nil {
		return fmt.Errorf("update reservation totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) scanReservation(row pgx.Row) (*models.Reservation, error) {
	var (
		res        models.Reservation
		status     string
		guestEmail, guestPhone, notes *string
	)
	err := row.Scan(
		&res.ID,
		&res.TenantID,
		&res.Code,
		&res.GuestName,
		&guestEmail,
		&guestPhone,
		&status,
		&res.Subtotal,
		&res.DiscountAmount,
		&res.TaxAmount,
		&res.TotalAmount,
		&res.Currency,
		&notes,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	res.Status = models.ReservationStatus(status)
	if guestEmail != nil {
		res.GuestEmail = *guestEmail
	}
	if guestPhone != nil {
		res.GuestPhone = *guestPhone
	}
	if notes != nil {
		res.Notes = *notes
	}
	return &res, nil
}
