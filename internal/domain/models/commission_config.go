package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionType determines how commission is computed for a resource
type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

// CommissionConfig is the per-resource commission configuration. At most one
// config exists per resource. Exactly one of Percentage/FixedAmount is
// meaningful, selected by Type.
type CommissionConfig struct {
	ID       uuid.UUID
	Resource ResourceRef

	Type CommissionType

	// Percentage of the line total, 0-100 with 2 decimal places.
	// Used when Type is "percentage".
	Percentage decimal.Decimal

	// Fixed amount in minor currency units, charged per billable unit.
	// Used when Type is "fixed".
	FixedAmount int64

	Currency string
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
