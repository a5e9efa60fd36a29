package models

import (
	"time"

	"github.com/google/uuid"
)

// RecipientType identifies who a distribution pays
type RecipientType string

const (
	RecipientMerchant RecipientType = "merchant"
	RecipientPartner  RecipientType = "partner"
	RecipientPlatform RecipientType = "platform"
)

// DistributionStatus represents the disbursement lifecycle of a distribution
type DistributionStatus string

const (
	DistributionPending    DistributionStatus = "pending"
	DistributionProcessing DistributionStatus = "processing"
	DistributionCompleted  DistributionStatus = "completed"
	DistributionFailed     DistributionStatus = "failed"
)

// Distribution is one recipient's share of a reservation item's revenue,
// created exactly once when the reservation settles. For a given item the
// distribution amounts sum to the item's line total.
//
// Snapshot is the permanent audit record of the calculation inputs at
// settlement time. It is immutable after creation except that an "error"
// key may be appended when a disbursement fails.
type Distribution struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ReservationID uuid.UUID
	ItemID        uuid.UUID

	RecipientType RecipientType
	RecipientID   uuid.UUID

	Amount   int64
	Currency string
	Status   DistributionStatus

	// DisbursementID is the payout provider's reference once paid.
	DisbursementID string
	DisbursedAt    *time.Time

	Snapshot map[string]interface{}

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NeedsDisbursement reports whether the distribution still requires an
// external payout. Platform distributions are internal bookkeeping and are
// created already completed.
func (d *Distribution) NeedsDisbursement() bool {
	return d.RecipientType != RecipientPlatform && d.Status == DistributionPending
}
