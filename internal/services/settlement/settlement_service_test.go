package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/test/mocks"
)

type settlementFixture struct {
	service       *Service
	db            *mocks.MockDB
	reservations  *mocks.MockReservationRepository
	items         *mocks.MockItemRepository
	distributions *mocks.MockDistributionRepository
	catalog       *mocks.MockCatalog
	queue         *mocks.MockQueue

	reservation *models.Reservation
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	f := &settlementFixture{
		db:            mocks.NewMockDB(),
		reservations:  mocks.NewMockReservationRepository(),
		items:         mocks.NewMockItemRepository(),
		distributions: mocks.NewMockDistributionRepository(),
		catalog:       mocks.NewMockCatalog(),
		queue:         mocks.NewMockQueue(),
	}
	f.service = NewService(f.db, f.reservations, f.items, f.distributions,
		f.catalog, f.queue, mocks.NewMockLogger())

	f.reservation = &models.Reservation{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Code:     "WXYZ234567",
		Status:   models.ReservationCompleted,
		Currency: "IDR",
	}
	f.reservations.Add(f.reservation)

	return f
}

// addItem seeds an active unit item plus its catalog resource, and returns
// the resource ref for attaching commission configs and partners.
func (f *settlementFixture) addItem(t *testing.T, kind models.ResourceKind, ratePrice int64, quantity int32, nights int64) (*models.ReservationItem, models.ResourceRef) {
	t.Helper()

	ref := models.ResourceRef{Kind: kind, ID: uuid.New()}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, int(nights))
	if kind == models.ResourceActivity {
		// An activity spanning n inclusive days ends n-1 days after it starts.
		end = start.AddDate(0, 0, int(nights)-1)
	}

	item := &models.ReservationItem{
		ID:            uuid.New(),
		ReservationID: f.reservation.ID,
		Resource:      ref,
		RateID:        uuid.New(),
		StartDate:     start,
		EndDate:       end,
		Quantity:      quantity,
		Status:        models.ItemActive,
		ResourceName:  "Deluxe Villa",
		RateName:      "Standard Rate",
		RatePrice:     ratePrice,
		Currency:      "IDR",
		LineTotal:     ratePrice * int64(quantity) * nights,
	}
	f.items.Add(item)
	f.catalog.Resources[ref] = &models.Resource{
		Ref:      ref,
		TenantID: f.reservation.TenantID,
		Name:     "Deluxe Villa",
	}
	return item, ref
}

func findDistribution(t *testing.T, dists []*models.Distribution, recipient models.RecipientType) *models.Distribution {
	t.Helper()
	for _, d := range dists {
		if d.RecipientType == recipient {
			return d
		}
	}
	t.Fatalf("no %s distribution found", recipient)
	return nil
}

func TestProcessReservation_PercentageCommissionNoPartner(t *testing.T) {
	f := newSettlementFixture(t)
	item, ref := f.addItem(t, models.ResourceUnit, 500000, 1, 2) // line total 1,000,000
	f.catalog.Configs[ref] = &models.CommissionConfig{
		Type:       models.CommissionPercentage,
		Percentage: decimal.RequireFromString("10"),
		IsActive:   true,
	}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)
	require.Len(t, dists, 2)

	merchant := findDistribution(t, dists, models.RecipientMerchant)
	assert.Equal(t, int64(900000), merchant.Amount)
	assert.Equal(t, f.reservation.TenantID, merchant.RecipientID)
	assert.Equal(t, models.DistributionPending, merchant.Status)
	assert.Equal(t, item.ID, merchant.ItemID)
	assert.Equal(t, f.reservation.TenantID.String(), merchant.Snapshot["tenant_id"])

	platform := findDistribution(t, dists, models.RecipientPlatform)
	assert.Equal(t, int64(100000), platform.Amount)
	assert.Equal(t, uuid.Nil, platform.RecipientID)
	assert.Equal(t, models.DistributionCompleted, platform.Status)

	// Only the merchant payout goes to the queue
	enqueued := f.queue.Enqueued()
	require.Len(t, enqueued, 1)
	assert.Equal(t, merchant.ID, enqueued[0])
}

func TestProcessReservation_PartnerExplicitSplit(t *testing.T) {
	f := newSettlementFixture(t)
	_, ref := f.addItem(t, models.ResourceUnit, 500000, 1, 2) // line total 1,000,000
	f.catalog.Configs[ref] = &models.CommissionConfig{
		Type:       models.CommissionPercentage,
		Percentage: decimal.RequireFromString("10"),
		IsActive:   true,
	}
	split := decimal.RequireFromString("60")
	partnerID := uuid.New()
	f.catalog.Assignments[ref] = &models.PartnerAssignment{
		PartnerID:       partnerID,
		Name:            "Bali Tours",
		CommissionSplit: &split,
	}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)
	require.Len(t, dists, 3)

	partner := findDistribution(t, dists, models.RecipientPartner)
	assert.Equal(t, int64(60000), partner.Amount)
	assert.Equal(t, partnerID, partner.RecipientID)
	assert.Equal(t, models.DistributionPending, partner.Status)

	platform := findDistribution(t, dists, models.RecipientPlatform)
	assert.Equal(t, int64(40000), platform.Amount)

	merchant := findDistribution(t, dists, models.RecipientMerchant)
	assert.Equal(t, int64(900000), merchant.Amount)

	// Every minor unit of the line total is accounted for
	assert.Equal(t, int64(1000000), merchant.Amount+partner.Amount+platform.Amount)
}

func TestProcessReservation_PartnerDefaultSplit(t *testing.T) {
	f := newSettlementFixture(t)
	_, ref := f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	f.catalog.Configs[ref] = &models.CommissionConfig{
		Type:       models.CommissionPercentage,
		Percentage: decimal.RequireFromString("10"),
		IsActive:   true,
	}
	f.catalog.Assignments[ref] = &models.PartnerAssignment{
		PartnerID: uuid.New(),
		Name:      "Bali Tours",
	}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	partner := findDistribution(t, dists, models.RecipientPartner)
	platform := findDistribution(t, dists, models.RecipientPlatform)
	assert.Equal(t, int64(70000), partner.Amount)
	assert.Equal(t, int64(30000), platform.Amount)
}

func TestProcessReservation_SplitTruncationNeverLosesMinorUnits(t *testing.T) {
	f := newSettlementFixture(t)
	_, ref := f.addItem(t, models.ResourceActivity, 333, 1, 1) // line total 333
	f.catalog.Configs[ref] = &models.CommissionConfig{
		Type:       models.CommissionPercentage,
		Percentage: decimal.RequireFromString("33.33"), // commission 110
		IsActive:   true,
	}
	f.catalog.Assignments[ref] = &models.PartnerAssignment{PartnerID: uuid.New()}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	merchant := findDistribution(t, dists, models.RecipientMerchant)
	partner := findDistribution(t, dists, models.RecipientPartner)
	platform := findDistribution(t, dists, models.RecipientPlatform)

	// 70% of 110 truncates to 77; the platform absorbs the remainder.
	assert.Equal(t, int64(77), partner.Amount)
	assert.Equal(t, int64(33), platform.Amount)
	assert.Equal(t, int64(333), merchant.Amount+partner.Amount+platform.Amount)
}

func TestProcessReservation_FixedCommissionUnit(t *testing.T) {
	f := newSettlementFixture(t)
	// 2 rooms, 3 nights
	_, ref := f.addItem(t, models.ResourceUnit, 300000, 2, 3) // line total 1,800,000
	f.catalog.Configs[ref] = &models.CommissionConfig{
		Type:        models.CommissionFixed,
		FixedAmount: 15000,
		IsActive:    true,
	}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	// Fixed amount x nights x quantity = 15000 x 3 x 2
	platform := findDistribution(t, dists, models.RecipientPlatform)
	assert.Equal(t, int64(90000), platform.Amount)

	merchant := findDistribution(t, dists, models.RecipientMerchant)
	assert.Equal(t, int64(1710000), merchant.Amount)
}

func TestProcessReservation_FixedCommissionActivity(t *testing.T) {
	f := newSettlementFixture(t)
	// 4 participants over a 2-day activity
	_, ref := f.addItem(t, models.ResourceActivity, 100000, 4, 2) // line total 800,000
	f.catalog.Configs[ref] = &models.CommissionConfig{
		Type:        models.CommissionFixed,
		FixedAmount: 15000,
		IsActive:    true,
	}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	// Activities charge per participant only, never per day
	platform := findDistribution(t, dists, models.RecipientPlatform)
	assert.Equal(t, int64(60000), platform.Amount)
}

func TestProcessReservation_DefaultCommissionWhenUnconfigured(t *testing.T) {
	f := newSettlementFixture(t)
	f.addItem(t, models.ResourceUnit, 500000, 1, 2) // line total 1,000,000; no config

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	platform := findDistribution(t, dists, models.RecipientPlatform)
	assert.Equal(t, int64(50000), platform.Amount) // 5% default

	assert.Equal(t, true, platform.Snapshot["commission_default"])
}

func TestProcessReservation_Idempotent(t *testing.T) {
	f := newSettlementFixture(t)
	f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	f.distributions.AlreadySettled = true

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	assert.Nil(t, dists)
	assert.Empty(t, f.distributions.Created())
	assert.Empty(t, f.queue.Enqueued())
	assert.Equal(t, 0, f.db.TransactionCalls)
}

func TestProcessReservation_SkipsCancelledItems(t *testing.T) {
	f := newSettlementFixture(t)
	item, _ := f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	item.Status = models.ItemCancelled

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)
	assert.Empty(t, dists)
}

func TestProcessReservation_SkipsDeletedResource(t *testing.T) {
	f := newSettlementFixture(t)
	_, ref := f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	delete(f.catalog.Resources, ref)

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)
	assert.Empty(t, dists)
	assert.Empty(t, f.queue.Enqueued())
}

func TestProcessReservation_SkipsZeroCommission(t *testing.T) {
	f := newSettlementFixture(t)
	// 5% of 10 truncates to 0
	item, _ := f.addItem(t, models.ResourceUnit, 10, 1, 1)
	item.LineTotal = 10

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)
	assert.Empty(t, dists)
}

func TestProcessReservation_EnqueueFailureDoesNotFailSettlement(t *testing.T) {
	f := newSettlementFixture(t)
	f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	f.queue.EnqueueErr = assert.AnError

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)

	// Distributions committed; the reconciliation sweep will re-enqueue.
	require.NoError(t, err)
	assert.Len(t, dists, 2)
	assert.Len(t, f.distributions.Created(), 2)
}

func TestProcessReservation_CreateFailureRollsUp(t *testing.T) {
	f := newSettlementFixture(t)
	f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	f.distributions.CreateErr = assert.AnError

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)

	require.Error(t, err)
	assert.Nil(t, dists)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSettlementFailed))
	assert.Empty(t, f.queue.Enqueued())
}

func TestProcessReservation_ReservationNotFound(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.service.ProcessReservation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestProcessReservation_MultiItemReservation(t *testing.T) {
	f := newSettlementFixture(t)
	_, unitRef := f.addItem(t, models.ResourceUnit, 500000, 1, 2)
	_, actRef := f.addItem(t, models.ResourceActivity, 200000, 2, 1)
	f.catalog.Configs[unitRef] = &models.CommissionConfig{
		Type:       models.CommissionPercentage,
		Percentage: decimal.RequireFromString("10"),
		IsActive:   true,
	}
	f.catalog.Configs[actRef] = &models.CommissionConfig{
		Type:        models.CommissionFixed,
		FixedAmount: 20000,
		IsActive:    true,
	}

	dists, err := f.service.ProcessReservation(context.Background(), f.reservation.ID)
	require.NoError(t, err)

	// Two distributions per item (merchant + platform, no partners)
	assert.Len(t, dists, 4)
	assert.Len(t, f.queue.Enqueued(), 2)
}
