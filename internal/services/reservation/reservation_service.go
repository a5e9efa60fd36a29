package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// DefaultCurrency is applied when a reservation or item is created
// without an explicit currency.
const DefaultCurrency = "IDR"

// SettlementProcessor is the lifecycle trigger's view of the settlement
// engine.
type SettlementProcessor interface {
	ProcessReservation(ctx context.Context, reservationID uuid.UUID) ([]*models.Distribution, error)
}

// Service implements reservation and line-item operations plus the
// status lifecycle that triggers settlement on completion.
type Service struct {
	db           ports.DBPort
	reservations ports.ReservationRepository
	items        ports.ReservationItemRepository
	catalog      ports.ResourceCatalog
	settlement   SettlementProcessor
	logger       ports.Logger
}

// NewService creates a new reservation service
func NewService(
	db ports.DBPort,
	reservations ports.ReservationRepository,
	items ports.ReservationItemRepository,
	catalog ports.ResourceCatalog,
	settlement SettlementProcessor,
	logger ports.Logger,
) *Service {
	return &Service{
		db:           db,
		reservations: reservations,
		items:        items,
		catalog:      catalog,
		settlement:   settlement,
		logger:       logger,
	}
}

// CreateRequest carries the fields for a new reservation.
type CreateRequest struct {
	TenantID       uuid.UUID
	GuestName      string
	GuestEmail     string
	GuestPhone     string
	Currency       string
	DiscountAmount int64
	TaxAmount      int64
	Notes          string
}

// Create creates a reservation in PENDING with a freshly generated
// unique code and zero totals.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Reservation, error) {
	if req.TenantID == uuid.Nil {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "tenant id is required")
	}
	if strings.TrimSpace(req.GuestName) == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "guest name is required")
	}
	if req.DiscountAmount < 0 || req.TaxAmount < 0 {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed, "negative adjustment amount", domain.ErrInvalidAmount)
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	code, err := s.GenerateCode(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ID:             uuid.New(),
		TenantID:       req.TenantID,
		Code:           code,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		GuestPhone:     req.GuestPhone,
		Status:         models.ReservationPending,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		Currency:       currency,
		Notes:          req.Notes,
	}
	reservation.RecalculateTotals(nil)

	if err := s.reservations.Create(ctx, nil, reservation); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("reservation created",
		ports.String("reservation_id", reservation.ID.String()),
		ports.String("code", reservation.Code),
		ports.String("tenant_id", reservation.TenantID.String()))

	return reservation, nil
}

// ItemOverride supplies snapshot fields when the live resource or rate
// cannot be resolved at add time.
type ItemOverride struct {
	ResourceName        string
	ResourceTypeLabel   string
	ResourceDescription string
	RateName            string
	RateDescription     string
	RatePriceType       string
	RatePrice           int64
	Currency            string
}

// AddItemRequest carries the fields for a new reservation line item.
type AddItemRequest struct {
	ReservationID uuid.UUID
	Resource      models.ResourceRef
	RateID        uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	StartTime     *time.Time
	EndTime       *time.Time
	Quantity      int32
	Override      *ItemOverride
}

// AddItem creates a line item with a full snapshot of the live resource
// and rate. When either lookup comes back empty the caller-supplied
// override fills the snapshot instead, so imports and backfills can
// reference resources that no longer exist. Reservation totals are
// recalculated in the same transaction.
func (s *Service) AddItem(ctx context.Context, req AddItemRequest) (*models.ReservationItem, error) {
	reservation, err := s.reservations.GetByID(ctx, nil, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if !reservation.IsModifiable() {
		return nil, domain.WrapError(domain.ErrorCodeReservationNotModifiable,
			fmt.Sprintf("reservation is %s", reservation.Status), domain.ErrReservationNotModifiable)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "end date precedes start date")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var item *models.ReservationItem

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		item = &models.ReservationItem{
			ID:            uuid.New(),
			ReservationID: reservation.ID,
			Resource:      req.Resource,
			RateID:        req.RateID,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			Quantity:      quantity,
			Status:        models.ItemActive,
		}

		if err := s.snapshotItem(ctx, tx, item, req.Override); err != nil {
			return err
		}

		duration := domain.DurationFor(item.Resource.Kind, item.StartDate, item.EndDate)
		item.LineTotal = item.RatePrice * int64(item.Quantity) * duration

		if err := s.items.Create(ctx, tx, item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}

		return s.recalculateTotals(ctx, tx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation item added",
		ports.String("reservation_id", reservation.ID.String()),
		ports.String("item_id", item.ID.String()),
		ports.String("resource_kind", string(item.Resource.Kind)),
		ports.Int64("line_total", item.LineTotal))

	return item, nil
}

// snapshotItem copies the live resource and rate fields onto the item,
// falling back to the override and then to defaults. Snapshot fields
// are write-once after this.
func (s *Service) snapshotItem(ctx context.Context, tx pgx.Tx, item *models.ReservationItem, override *ItemOverride) error {
	resource, err := s.catalog.ResolveResource(ctx, tx, item.Resource)
	if err != nil {
		return fmt.Errorf("resolve resource: %w", err)
	}
	if resource != nil {
		item.ResourceName = resource.Name
		item.ResourceTypeLabel = resource.TypeLabel
		item.ResourceDescription = resource.Description
	} else if override != nil {
		item.ResourceName = override.ResourceName
		item.ResourceTypeLabel = override.ResourceTypeLabel
		item.ResourceDescription = override.ResourceDescription
	}

	rate, err := s.catalog.ResolveRate(ctx, tx, item.RateID)
	if err != nil {
		return fmt.Errorf("resolve rate: %w", err)
	}
	if rate != nil {
		item.RateName = rate.Name
		item.RateDescription = rate.Description
		item.RatePriceType = rate.PriceType
		item.RatePrice = rate.Price
		item.Currency = rate.Currency
	} else if override != nil {
		item.RateName = override.RateName
		item.RateDescription = override.RateDescription
		item.RatePriceType = override.RatePriceType
		item.RatePrice = override.RatePrice
		item.Currency = override.Currency
	}

	if item.Currency == "" {
		item.Currency = DefaultCurrency
	}
	if item.RatePrice < 0 {
		return domain.WrapError(domain.ErrorCodeValidationFailed, "negative rate price", domain.ErrInvalidAmount)
	}
	return nil
}

// CancelItem soft-cancels a line item and recalculates the reservation
// totals. Cancelling an already-cancelled item is a no-op.
func (s *Service) CancelItem(ctx context.Context, reservationID, itemID uuid.UUID) error {
	reservation, err := s.reservations.GetByID(ctx, nil, reservationID)
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}
	if !reservation.IsModifiable() {
		return domain.WrapError(domain.ErrorCodeReservationNotModifiable,
			fmt.Sprintf("reservation is %s", reservation.Status), domain.ErrReservationNotModifiable)
	}

	item, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if item.ReservationID != reservationID {
		return domain.WrapError(domain.ErrorCodeItemNotFound, "item belongs to another reservation", domain.ErrItemNotFound)
	}
	if item.Status == models.ItemCancelled {
		return nil
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.items.UpdateStatus(ctx, tx, itemID, models.ItemCancelled); err != nil {
			return fmt.Errorf("cancel item: %w", err)
		}
		return s.recalculateTotals(ctx, tx, reservation)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation item cancelled",
		ports.String("reservation_id", reservationID.String()),
		ports.String("item_id", itemID.String()))
	return nil
}

// recalculateTotals recomputes and persists the reservation totals from
// the current item rows, within the caller's transaction.
func (s *Service) recalculateTotals(ctx context.Context, tx pgx.Tx, reservation *models.Reservation) error {
	items, err := s.items.ListByReservation(ctx, tx, reservation.ID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	reservation.RecalculateTotals(items)
	if err := s.reservations.UpdateTotals(ctx, tx, reservation); err != nil {
		return fmt.Errorf("update totals: %w", err)
	}
	return nil
}

// UpdateStatus applies a validated status transition and fires the
// lifecycle trigger. Setting the current status again is a no-op.
//
// The transition is committed before settlement runs; a settlement
// failure is returned to the caller but does not roll the status back,
// and re-running settlement later is safe because it is idempotent.
func (s *Service) UpdateStatus(ctx context.Context, reservationID uuid.UUID, newStatus models.ReservationStatus) (*models.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, nil, reservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	oldStatus := reservation.Status
	if oldStatus == newStatus {
		return reservation, nil
	}

	if !oldStatus.CanTransitionTo(newStatus) {
		return nil, domain.WrapError(domain.ErrorCodeReservationBadTransition,
			fmt.Sprintf("cannot transition %s to %s", oldStatus, newStatus),
			domain.ErrInvalidStatusTransition)
	}

	if err := s.reservations.UpdateStatus(ctx, nil, reservationID, newStatus); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	reservation.Status = newStatus

	s.logger.Info("reservation status updated",
		ports.String("reservation_id", reservationID.String()),
		ports.String("code", reservation.Code),
		ports.String("old_status", string(oldStatus)),
		ports.String("new_status", string(newStatus)))

	if err := s.afterStatusChange(ctx, reservation, oldStatus, newStatus); err != nil {
		return reservation, err
	}
	return reservation, nil
}

// afterStatusChange is the lifecycle trigger: completion starts
// settlement exactly once, every other transition is ignored.
func (s *Service) afterStatusChange(ctx context.Context, reservation *models.Reservation, oldStatus, newStatus models.ReservationStatus) error {
	if oldStatus == newStatus || newStatus != models.ReservationCompleted {
		return nil
	}
	if s.settlement == nil {
		return nil
	}

	if _, err := s.settlement.ProcessReservation(ctx, reservation.ID); err != nil {
		s.logger.Error("settlement failed after completion",
			ports.String("reservation_id", reservation.ID.String()),
			ports.Err(err))
		return err
	}
	return nil
}
