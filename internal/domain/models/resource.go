package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resource is the read-only projection of a bookable resource (unit or
// activity) that the settlement core consumes. Resource management itself
// lives outside this service.
type Resource struct {
	Ref         ResourceRef
	TenantID    uuid.UUID
	Name        string
	TypeLabel   string
	Description string
}

// Rate is the read-only projection of a pricing rate for a resource.
type Rate struct {
	ID          uuid.UUID
	Name        string
	Description string
	PriceType   string
	Price       int64
	Currency    string
}

// PartnerAssignment links a referring partner to a resource. A resource has
// zero or one partner; the partner is entitled to CommissionSplit percent of
// the resource's commission.
type PartnerAssignment struct {
	PartnerID uuid.UUID
	Name      string
	Email     string

	// CommissionSplit is nil when no explicit split is configured; the
	// settlement engine then applies the default.
	CommissionSplit *decimal.Decimal
}

// BankAccount is a recipient's payout destination as returned by the
// bank-account store.
type BankAccount struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	BankCode          string
	AccountNumber     string
	AccountHolderName string
	IsPrimary         bool
	IsVerified        bool
}
