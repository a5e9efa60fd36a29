package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{"pending to confirmed", ReservationPending, ReservationConfirmed, true},
		{"pending to cancelled", ReservationPending, ReservationCancelled, true},
		{"pending to no-show", ReservationPending, ReservationNoShow, true},
		{"pending cannot skip to completed", ReservationPending, ReservationCompleted, false},
		{"confirmed to completed", ReservationConfirmed, ReservationCompleted, true},
		{"confirmed to cancelled", ReservationConfirmed, ReservationCancelled, true},
		{"confirmed to no-show", ReservationConfirmed, ReservationNoShow, true},
		{"confirmed cannot revert to pending", ReservationConfirmed, ReservationPending, false},
		{"completed is terminal", ReservationCompleted, ReservationCancelled, false},
		{"cancelled is terminal", ReservationCancelled, ReservationConfirmed, false},
		{"no-show is terminal", ReservationNoShow, ReservationCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReservation_IsModifiable(t *testing.T) {
	modifiable := []ReservationStatus{ReservationPending, ReservationConfirmed, ReservationNoShow}
	for _, status := range modifiable {
		r := &Reservation{Status: status}
		assert.True(t, r.IsModifiable(), "status %s", status)
	}

	frozen := []ReservationStatus{ReservationCompleted, ReservationCancelled}
	for _, status := range frozen {
		r := &Reservation{Status: status}
		assert.False(t, r.IsModifiable(), "status %s", status)
	}
}

func TestReservation_RecalculateTotals(t *testing.T) {
	r := &Reservation{
		DiscountAmount: 50000,
		TaxAmount:      30000,
	}

	items := []*ReservationItem{
		{Status: ItemActive, LineTotal: 400000},
		{Status: ItemActive, LineTotal: 250000},
		{Status: ItemCancelled, LineTotal: 999999},
	}

	r.RecalculateTotals(items)

	assert.Equal(t, int64(650000), r.Subtotal)
	assert.Equal(t, int64(630000), r.TotalAmount)
}

func TestReservation_RecalculateTotals_NoItems(t *testing.T) {
	r := &Reservation{
		Subtotal:       123,
		DiscountAmount: 10,
		TaxAmount:      5,
	}

	r.RecalculateTotals(nil)

	assert.Equal(t, int64(0), r.Subtotal)
	assert.Equal(t, int64(-5), r.TotalAmount)
}
