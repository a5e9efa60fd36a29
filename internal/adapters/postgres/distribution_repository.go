package postgres

import (
	"context"
	"encoding/json"
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

// DistributionRepository implements ports.DistributionRepository using pgx
type DistributionRepository struct {
	pool *pgxpool.Pool
}

// NewDistributionRepository creates a new distribution repository
func NewDistributionRepository(db ports.DBPort) *DistributionRepository {
	return &DistributionRepository{pool: db.GetDB()}
}

func (r *DistributionRepository) q(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

const distributionColumns = `id, tenant_id, reservation_id, item_id,
	recipient_type, recipient_id, amount, currency, status,
	disbursement_id, disbursed_at, snapshot, created_at, updated_at`

// Create inserts a new distribution with its audit snapshot
func (r *DistributionRepository) Create(ctx context.Context, tx ports.DBTX, d *models.Distribution) error {
	snapshot, err := json.Marshal(d.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.q(tx).Exec(ctx, `
		INSERT INTO distributions (
			id, tenant_id, reservation_id, item_id,
			recipient_type, recipient_id, amount, currency, status,
			disbursement_id, disbursed_at, snapshot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID,
		d.TenantID,
		d.ReservationID,
		d.ItemID,
		string(d.RecipientType),
		d.RecipientID,
		d.Amount,
		d.Currency,
		string(d.Status),
		nullText(d.DisbursementID),
		nullTimestamptz(d.DisbursedAt),
		snapshot,
	)
	if err != nil {
		return fmt.Errorf("create distribution: %w", err)
	}
	return nil
}

// GetByID retrieves a distribution by its ID
func (r *DistributionRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Distribution, error) {
	row := r.q(db).QueryRow(ctx,
		`SELECT `+distributionColumns+` FROM distributions WHERE id = $1`, id)
	d, err := scanDistribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDistributionNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByReservation lists all distributions created for a reservation
func (r *DistributionRepository) ListByReservation(ctx context.Context, db ports.DBTX, reservationID uuid.UUID) ([]*models.Distribution, error) {
	rows, err := r.q(db).Query(ctx,
		`SELECT `+distributionColumns+` FROM distributions WHERE reservation_id = $1 ORDER BY created_at`,
		reservationID)
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()
	return collectDistributions(rows)
}

// ExistsForReservation reports whether settlement already ran for a reservation
func (r *DistributionRepository) ExistsForReservation(ctx context.Context, db ports.DBTX, reservationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q(db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM distributions WHERE reservation_id = $1)`,
		reservationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check distributions: %w", err)
	}
	return exists, nil
}

// UpdateStatus updates the disbursement status of a distribution
func (r *DistributionRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.DistributionStatus) error {
	tag, err := r.q(tx).Exec(ctx,
		`UPDATE distributions SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update distribution status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDistributionNotFound
	}
	return nil
}

// MarkCompleted records a successful disbursement
func (r *DistributionRepository) MarkCompleted(ctx context.Context, tx ports.DBTX, id uuid.UUID, disbursementID string, disbursedAt time.Time) error {
	tag, err := r.q(tx).Exec(ctx, `
		UPDATE distributions
		SET status = $2, disbursement_id = $3, disbursed_at = $4, updated_at = now()
		WHERE id = $1`,
		id, string(models.DistributionCompleted), disbursementID, disbursedAt)
	if err != nil {
		return fmt.Errorf("mark distribution completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDistributionNotFound
	}
	return nil
}

// MarkFailed records a failed disbursement, appending the reason under the
// snapshot's "error" key. All other snapshot fields stay untouched.
func (r *DistributionRepository) MarkFailed(ctx context.Context, tx ports.DBTX, id uuid.UUID, reason string) error {
	errJSON, err := json.Marshal(map[string]string{"error": reason})
	if err != nil {
		return fmt.Errorf("marshal failure reason: %w", err)
	}

	tag, err := r.q(tx).Exec(ctx, `
		UPDATE distributions
		SET status = $2, snapshot = snapshot || $3::jsonb, updated_at = now()
		WHERE id = $1`,
		id, string(models.DistributionFailed), errJSON)
	if err != nil {
		return fmt.Errorf("mark distribution failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDistributionNotFound
	}
	return nil
}

// ListPendingNeedingDisbursement returns non-platform pending distributions
// created before cutoff. Used by the reconciliation sweep to re-enqueue
// tasks lost in the commit/enqueue crash window.
func (r *DistributionRepository) ListPendingNeedingDisbursement(ctx context.Context, db ports.DBTX, cutoff time.Time, limit int32) ([]*models.Distribution, error) {
	rows, err := r.q(db).Query(ctx, `
		SELECT `+distributionColumns+`
		FROM distributions
		WHERE status = $1 AND recipient_type <> $2 AND created_at < $3
		ORDER BY created_at
		LIMIT $4`,
		string(models.DistributionPending), string(models.RecipientPlatform), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending distributions: %w", err)
	}
	defer rows.Close()
	return collectDistributions(rows)
}

func collectDistributions(rows pgx.Rows) ([]*models.Distribution, error) {
	var out []*models.Distribution
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distributions: %w", err)
	}
	return out, nil
}

func scanDistribution(row pgx.Row) (*models.Distribution, error) {
	var (
		d                     models.Distribution
		recipientType, status string
		disbursementID        *string
		disbursedAt           *time.Time
		snapshot              []byte
	)
	err := row.Scan(
		&d.ID,
		&d.TenantID,
		&d.ReservationID,
		&d.ItemID,
		&recipientType,
		&d.RecipientID,
		&d.Amount,
		&d.Currency,
		&status,
		&disbursementID,
		&disbursedAt,
		&snapshot,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan distribution: %w", err)
	}
	d.RecipientType = models.RecipientType(recipientType)
	d.Status = models.DistributionStatus(status)
	if disbursementID != nil {
		d.DisbursementID = *disbursementID
	}
	d.DisbursedAt = disbursedAt
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &d.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	return &d, nil
}
