package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// ReservationItemRepository implements ports.ReservationItemRepository using pgx
type ReservationItemRepository struct {
	pool *pgxpool.Pool
}

// NewReservationItemRepository creates a new reservation item repository
func NewReservationItemRepository(db ports.DBPort) *ReservationItemRepository {
	return &ReservationItemRepository{pool: db.GetDB()}
}

func (r *ReservationItemRepository) q(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

const itemColumns = `id, reservation_id, resource_kind, resource_id, rate_id,
	start_date, end_date, start_time, end_time, quantity, status,
	resource_name, resource_type_label, resource_description,
	rate_name, rate_description, rate_price_type, rate_price,
	currency, line_total, created_at, updated_at`

// Create inserts a new reservation item with its snapshot fields. The
// snapshot columns are written here and nowhere else.
func (r *ReservationItemRepository) Create(ctx context.Context, tx ports.DBTX, item *models.ReservationItem) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO reservation_items (
			id, reservation_id, resource_kind, resource_id, rate_id,
			start_date, end_date, start_time, end_time, quantity, status,
			resource_name, resource_type_label, resource_description,
			rate_name, rate_description, rate_price_type, rate_price,
			currency, line_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		item.ID,
		item.ReservationID,
		string(item.Resource.Kind),
		item.Resource.ID,
		item.RateID,
		item.StartDate,
		item.EndDate,
		nullTimestamptz(item.StartTime),
		nullTimestamptz(item.EndTime),
		item.Quantity,
		string(item.Status),
		item.ResourceName,
		nullText(item.ResourceTypeLabel),
		nullText(item.ResourceDescription),
		item.RateName,
		nullText(item.RateDescription),
		nullText(item.RatePriceType),
		item.RatePrice,
		item.Currency,
		item.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("create reservation item: %w", err)
	}
	return nil
}

// GetByID retrieves a reservation item by its ID
func (r *ReservationItemRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.ReservationItem, error) {
	row := r.q(db).QueryRow(ctx,
		`SELECT `+itemColumns+` FROM reservation_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// ListByReservation lists all items of a reservation, oldest first
func (r *ReservationItemRepository) ListByReservation(ctx context.Context, db ports.DBTX, reservationID uuid.UUID) ([]*models.ReservationItem, error) {
	rows, err := r.q(db).Query(ctx,
		`SELECT `+itemColumns+` FROM reservation_items WHERE reservation_id = $1 ORDER BY created_at`,
		reservationID)
	if err != nil {
		return nil, fmt.Errorf("list reservation items: %w", err)
	}
	defer rows.Close()

	var items []*models.ReservationItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservation items: %w", err)
	}
	return items, nil
}

// UpdateStatus flips an item's status. Rows are never deleted.
func (r *ReservationItemRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.ItemStatus) error {
	tag, err := r.q(tx).Exec(ctx,
		`UPDATE reservation_items SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*models.ReservationItem, error) {
	var (
		item         models.ReservationItem
		kind, status string
		typeLabel, resourceDesc, rateDesc, priceType *string
		startTime, endTime                           *time.Time
	)
	err := row.Scan(
		&item.ID,
		&item.ReservationID,
		&kind,
		&item.Resource.ID,
		&item.RateID,
		&item.StartDate,
		&item.EndDate,
		&startTime,
		&endTime,
		&item.Quantity,
		&status,
		&item.ResourceName,
		&typeLabel,
		&resourceDesc,
		&item.RateName,
		&rateDesc,
		&priceType,
		&item.RatePrice,
		&item.Currency,
		&item.LineTotal,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan reservation item: %w", err)
	}
	item.Resource.Kind = models.ResourceKind(kind)
	item.Status = models.ItemStatus(status)
	item.StartTime = startTime
	item.EndTime = endTime
	if typeLabel != nil {
		item.ResourceTypeLabel = *typeLabel
	}
	if resourceDesc != nil {
		item.ResourceDescription = *resourceDesc
	}
	if rateDesc != nil {
		item.RateDescription = *rateDesc
	}
	if priceType != nil {
		item.RatePriceType = *priceType
	}
	return &item, nil
}
