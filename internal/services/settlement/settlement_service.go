package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
	"github.com/kurniadi/booking-service/pkg/observability"
)

// Service is the settlement engine. When a reservation completes it
// computes, per active item, how the line total splits between the
// merchant, an optional referring partner, and the platform, and
// records one distribution row per recipient.
type Service struct {
	db            ports.DBPort
	reservations  ports.ReservationRepository
	items         ports.ReservationItemRepository
	distributions ports.DistributionRepository
	catalog       ports.ResourceCatalog
	queue         ports.DisbursementQueue
	logger        ports.Logger
}

// NewService creates a new settlement service
func NewService(
	db ports.DBPort,
	reservations ports.ReservationRepository,
	items ports.ReservationItemRepository,
	distributions ports.DistributionRepository,
	catalog ports.ResourceCatalog,
	queue ports.DisbursementQueue,
	logger ports.Logger,
) *Service {
	return &Service{
		db:            db,
		reservations:  reservations,
		items:         items,
		distributions: distributions,
		catalog:       catalog,
		queue:         queue,
		logger:        logger,
	}
}

// ProcessReservation settles a completed reservation. All distributions
// for all items are created in one transaction; a failure on any item
// rolls back everything so settlement can be retried cleanly.
//
// The operation is idempotent: if any distribution already exists for
// the reservation, nothing is created and no tasks are enqueued.
func (s *Service) ProcessReservation(ctx context.Context, reservationID uuid.UUID) ([]*models.Distribution, error) {
	start := time.Now()

	reservation, err := s.reservations.GetByID(ctx, nil, reservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	exists, err := s.distributions.ExistsForReservation(ctx, nil, reservationID)
	if err != nil {
		return nil, fmt.Errorf("check existing distributions: %w", err)
	}
	if exists {
		s.logger.Info("reservation already settled, skipping",
			ports.String("reservation_id", reservationID.String()),
			ports.String("code", reservation.Code))
		observability.RecordSettlement(reservation.TenantID.String(), "already_settled", time.Since(start).Seconds())
		return nil, nil
	}

	var created []*models.Distribution

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		items, err := s.items.ListByReservation(ctx, tx, reservationID)
		if err != nil {
			return fmt.Errorf("list reservation items: %w", err)
		}

		for _, item := range items {
			if item.Status != models.ItemActive {
				continue
			}
			dists, err := s.processItem(ctx, tx, reservation, item)
			if err != nil {
				return fmt.Errorf("process item %s: %w", item.ID, err)
			}
			created = append(created, dists...)
		}
		return nil
	})
	if err != nil {
		observability.RecordSettlement(reservation.TenantID.String(), "failed", time.Since(start).Seconds())
		s.logger.Error("settlement failed",
			ports.String("reservation_id", reservationID.String()),
			ports.Err(err))
		return nil, domain.WrapError(domain.ErrorCodeSettlementFailed, "settlement transaction failed", err)
	}

	// Distributions are durable at this point. Enqueue failures are
	// logged and left to the reconciliation sweep rather than failing
	// the already-committed settlement.
	for _, dist := range created {
		if !dist.NeedsDisbursement() {
			continue
		}
		if err := s.queue.Enqueue(ctx, dist.ID); err != nil {
			s.logger.Error("failed to enqueue disbursement task",
				ports.String("distribution_id", dist.ID.String()),
				ports.String("recipient_type", string(dist.RecipientType)),
				ports.Err(err))
		}
	}

	observability.RecordSettlement(reservation.TenantID.String(), "settled", time.Since(start).Seconds())
	s.logger.Info("reservation settled",
		ports.String("reservation_id", reservationID.String()),
		ports.String("code", reservation.Code),
		ports.Int("distributions", len(created)))

	return created, nil
}

// processItem computes and persists the distributions for one active
// item. A missing resource or a non-positive commission skips the item
// without error: legacy and zero-revenue items settle to nothing.
func (s *Service) processItem(ctx context.Context, tx pgx.Tx, reservation *models.Reservation, item *models.ReservationItem) ([]*models.Distribution, error) {
	resource, err := s.catalog.ResolveResource(ctx, tx, item.Resource)
	if err != nil {
		return nil, fmt.Errorf("resolve resource: %w", err)
	}
	if resource == nil {
		s.logger.Warn("resource no longer exists, skipping item",
			ports.String("item_id", item.ID.String()),
			ports.String("resource_id", item.Resource.ID.String()),
			ports.String("resource_kind", string(item.Resource.Kind)))
		return nil, nil
	}

	cfg, err := s.catalog.CommissionConfig(ctx, tx, item.Resource)
	if err != nil {
		return nil, fmt.Errorf("resolve commission config: %w", err)
	}

	nights := domain.DurationFor(item.Resource.Kind, item.StartDate, item.EndDate)
	commission := domain.CalculateCommission(cfg, item.Resource.Kind, item.LineTotal, item.Quantity, nights)
	if commission <= 0 {
		s.logger.Warn("non-positive commission, skipping item",
			ports.String("item_id", item.ID.String()),
			ports.Int64("commission", commission))
		return nil, nil
	}

	assignment, err := s.catalog.PartnerAssignment(ctx, tx, item.Resource)
	if err != nil {
		return nil, fmt.Errorf("resolve partner assignment: %w", err)
	}

	merchantAmount := item.LineTotal - commission

	var partnerAmount, platformAmount int64
	split := domain.PartnerSplit(assignment)
	if assignment != nil {
		partnerAmount, platformAmount = domain.RemainderSplit(commission, domain.PercentageOf(commission, split))
	} else {
		platformAmount = commission
	}

	settledAt := time.Now().UTC()
	base := map[string]interface{}{
		"reservation_id":     reservation.ID.String(),
		"reservation_code":   reservation.Code,
		"reservation_status": string(reservation.Status),
		"settled_at":         settledAt.Format(time.RFC3339),
		"item_id":            item.ID.String(),
		"resource_kind":      string(item.Resource.Kind),
		"resource_id":        item.Resource.ID.String(),
		"resource_name":      item.ResourceName,
		"resource_type":      item.ResourceTypeLabel,
		"rate_price":         item.RatePrice,
		"quantity":           item.Quantity,
		"duration":           nights,
		"line_total":         item.LineTotal,
		"commission":         commission,
	}
	if cfg != nil && cfg.IsActive {
		base["commission_type"] = string(cfg.Type)
		if cfg.Type == models.CommissionPercentage {
			base["commission_percentage"] = cfg.Percentage.String()
		} else {
			base["commission_fixed_amount"] = cfg.FixedAmount
		}
	} else {
		base["commission_type"] = string(models.CommissionPercentage)
		base["commission_percentage"] = domain.DefaultCommissionPercentage.String()
		base["commission_default"] = true
	}

	var dists []*models.Distribution

	merchantSnap := cloneSnapshot(base)
	merchantSnap["tenant_id"] = reservation.TenantID.String()
	merchantSnap["merchant_amount"] = merchantAmount
	dists = append(dists, s.newDistribution(reservation, item,
		models.RecipientMerchant, reservation.TenantID, merchantAmount,
		models.DistributionPending, merchantSnap))

	if assignment != nil {
		partnerSnap := cloneSnapshot(base)
		partnerSnap["partner_id"] = assignment.PartnerID.String()
		partnerSnap["partner_name"] = assignment.Name
		partnerSnap["partner_email"] = assignment.Email
		partnerSnap["split_percentage"] = split.String()
		partnerSnap["partner_amount"] = partnerAmount
		dists = append(dists, s.newDistribution(reservation, item,
			models.RecipientPartner, assignment.PartnerID, partnerAmount,
			models.DistributionPending, partnerSnap))
	}

	platformSnap := cloneSnapshot(base)
	platformSnap["platform_amount"] = platformAmount
	if assignment != nil {
		platformSnap["split_percentage"] = split.String()
	}
	// Platform revenue is internal bookkeeping; no payout ever leaves
	// the system for it, so it is recorded completed immediately.
	dists = append(dists, s.newDistribution(reservation, item,
		models.RecipientPlatform, uuid.Nil, platformAmount,
		models.DistributionCompleted, platformSnap))

	for _, dist := range dists {
		if err := s.distributions.Create(ctx, tx, dist); err != nil {
			return nil, fmt.Errorf("create %s distribution: %w", dist.RecipientType, err)
		}
		observability.RecordDistributionCreated(reservation.TenantID.String(),
			string(dist.RecipientType), dist.Currency, dist.Amount)
	}

	return dists, nil
}

func (s *Service) newDistribution(
	reservation *models.Reservation,
	item *models.ReservationItem,
	recipientType models.RecipientType,
	recipientID uuid.UUID,
	amount int64,
	status models.DistributionStatus,
	snapshot map[string]interface{},
) *models.Distribution {
	return &models.Distribution{
		ID:            uuid.New(),
		TenantID:      reservation.TenantID,
		ReservationID: reservation.ID,
		ItemID:        item.ID,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Amount:        amount,
		Currency:      item.Currency,
		Status:        status,
		Snapshot:      snapshot,
	}
}

func cloneSnapshot(base map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+4)
	for k, v := range base {
		out[k] = v
	}
	return out
}
