package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the current state of a reservation
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

// allowedTransitions maps each status to the statuses it may move to.
// COMPLETED, CANCELLED and NO_SHOW are terminal.
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled, ReservationNoShow},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled, ReservationNoShow},
}

// CanTransitionTo reports whether a reservation in status s may move to target.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Reservation represents a guest booking aggregating one or more items.
// All monetary fields are integer minor currency units.
type Reservation struct {
	ID       uuid.UUID
	TenantID uuid.UUID

	// Code is a 10-character human-readable identifier drawn from an
	// unambiguous alphabet, unique within a tenant.
	Code string

	GuestName  string
	GuestEmail string
	GuestPhone string

	Status ReservationStatus

	Subtotal       int64
	DiscountAmount int64
	TaxAmount      int64
	TotalAmount    int64
	Currency       string

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsModifiable reports whether items can still be added to or cancelled
// from the reservation.
func (r *Reservation) IsModifiable() bool {
	return r.Status != ReservationCompleted && r.Status != ReservationCancelled
}

// RecalculateTotals recomputes the reservation's monetary totals from the
// given items. Only ACTIVE items contribute to the subtotal. The caller is
// responsible for persisting the updated totals.
func (r *Reservation) RecalculateTotals(items []*ReservationItem) {
	var subtotal int64
	for _, item := range items {
		if item.Status == ItemActive {
			subtotal += item.LineTotal
		}
	}
	r.Subtotal = subtotal
	r.TotalAmount = subtotal - r.DiscountAmount + r.TaxAmount
}
