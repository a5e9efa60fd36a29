package domain

import (
	"github.com/shopspring/decimal"

	"github.com/kurniadi/booking-service/internal/domain/models"
)

// DefaultCommissionPercentage is applied when a resource has no active
// commission config. Commission is never skipped just because none is
// configured.
var DefaultCommissionPercentage = decimal.NewFromInt(5)

// DefaultPartnerSplit is the partner's share of commission when a partner is
// assigned without an explicit split (70% partner / 30% platform).
var DefaultPartnerSplit = decimal.NewFromInt(70)

// CalculateCommission computes the commission for one reservation item.
//
// Percentage configs take a truncated percentage of the line total. Fixed
// configs charge the fixed amount per billable unit: nights x quantity for
// unit stays, quantity alone for activities (which are not charged per
// night). A nil or inactive config falls back to the default percentage.
func CalculateCommission(cfg *models.CommissionConfig, kind models.ResourceKind, lineTotal int64, quantity int32, nights int64) int64 {
	if cfg == nil || !cfg.IsActive {
		return PercentageOf(lineTotal, DefaultCommissionPercentage)
	}

	switch cfg.Type {
	case models.CommissionFixed:
		multiplier := int64(quantity)
		if kind == models.ResourceUnit {
			multiplier = nights * int64(quantity)
		}
		return cfg.FixedAmount * multiplier
	case models.CommissionPercentage:
		return PercentageOf(lineTotal, cfg.Percentage)
	default:
		return PercentageOf(lineTotal, DefaultCommissionPercentage)
	}
}

// PartnerSplit resolves the effective partner split percentage for an
// assignment, falling back to the default when none is set.
func PartnerSplit(assignment *models.PartnerAssignment) decimal.Decimal {
	if assignment == nil {
		return decimal.Zero
	}
	if assignment.CommissionSplit == nil {
		return DefaultPartnerSplit
	}
	return *assignment.CommissionSplit
}
