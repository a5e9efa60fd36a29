package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// CatalogRepository implements ports.ResourceCatalog over the resource
// tables owned by the (external) resource-management side of the system.
// Units and activities live in separate tables; the resource kind selects
// which one a lookup hits.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new resource catalog repository
func NewCatalogRepository(db ports.DBPort) *CatalogRepository {
	return &CatalogRepository{pool: db.GetDB()}
}

func (r *CatalogRepository) q(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

// ResolveResource looks up a unit or activity by its tagged reference.
// Returns (nil, nil) when the resource no longer exists.
func (r *CatalogRepository) ResolveResource(ctx context.Context, db ports.DBTX, ref models.ResourceRef) (*models.Resource, error) {
	var query string
	switch ref.Kind {
	case models.ResourceUnit:
		query = `SELECT tenant_id, name, type_label, COALESCE(description, '') FROM units WHERE id = $1`
	case models.ResourceActivity:
		query = `SELECT tenant_id, name, type_label, COALESCE(description, '') FROM activities WHERE id = $1`
	default:
		return nil, fmt.Errorf("unknown resource kind %q", ref.Kind)
	}

	res := models.Resource{Ref: ref}
	err := r.q(db).QueryRow(ctx, query, ref.ID).Scan(
		&res.TenantID, &res.Name, &res.TypeLabel, &res.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve resource: %w", err)
	}
	return &res, nil
}

// ResolveRate looks up a rate by ID. Returns (nil, nil) when missing.
func (r *CatalogRepository) ResolveRate(ctx context.Context, db ports.DBTX, rateID uuid.UUID) (*models.Rate, error) {
	var rate models.Rate
	err := r.q(db).QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), price_type, price, currency
		FROM rates WHERE id = $1`, rateID).Scan(
		&rate.ID, &rate.Name, &rate.Description, &rate.PriceType, &rate.Price, &rate.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve rate: %w", err)
	}
	return &rate, nil
}

// CommissionConfig returns the resource's commission config, or (nil, nil)
// when none is configured.
func (r *CatalogRepository) CommissionConfig(ctx context.Context, db ports.DBTX, ref models.ResourceRef) (*models.CommissionConfig, error) {
	cfg := models.CommissionConfig{Resource: ref}
	var (
		cfgType    string
		percentage pgtype.Numeric
	)
	err := r.q(db).QueryRow(ctx, `
		SELECT id, commission_type, commission_percentage, commission_fixed,
			currency, is_active, created_at, updated_at
		FROM commission_configs
		WHERE resource_kind = $1 AND resource_id = $2`,
		string(ref.Kind), ref.ID).Scan(
		&cfg.ID, &cfgType, &percentage, &cfg.FixedAmount,
		&cfg.Currency, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve commission config: %w", err)
	}
	cfg.Type = models.CommissionType(cfgType)
	pct, err := pgNumericToDecimal(percentage)
	if err != nil {
		return nil, fmt.Errorf("commission percentage: %w", err)
	}
	cfg.Percentage = pct
	return &cfg, nil
}

// PartnerAssignment returns the resource's partner assignment with its
// optional commission split, or (nil, nil) when no partner is attached.
func (r *CatalogRepository) PartnerAssignment(ctx context.Context, db ports.DBTX, ref models.ResourceRef) (*models.PartnerAssignment, error) {
	var (
		pa    models.PartnerAssignment
		split pgtype.Numeric
	)
	err := r.q(db).QueryRow(ctx, `
		SELECT p.id, p.name, COALESCE(p.email, ''), rp.commission_split
		FROM resource_partners rp
		JOIN partners p ON p.id = rp.partner_id
		WHERE rp.resource_kind = $1 AND rp.resource_id = $2`,
		string(ref.Kind), ref.ID).Scan(
		&pa.PartnerID, &pa.Name, &pa.Email, &split)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve partner assignment: %w", err)
	}
	if split.Valid {
		d, err := pgNumericToDecimal(split)
		if err != nil {
			return nil, fmt.Errorf("partner split: %w", err)
		}
		pa.CommissionSplit = &d
	}
	return &pa, nil
}
