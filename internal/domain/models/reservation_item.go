package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus represents the state of a reservation line item
type ItemStatus string

const (
	ItemActive    ItemStatus = "ACTIVE"
	ItemCancelled ItemStatus = "CANCELLED"
)

// ResourceKind discriminates the two bookable resource types
type ResourceKind string

const (
	ResourceUnit     ResourceKind = "unit"
	ResourceActivity ResourceKind = "activity"
)

// ResourceRef is a tagged reference to a bookable resource (a unit stay or
// an activity booking).
type ResourceRef struct {
	Kind ResourceKind
	ID   uuid.UUID
}

// ReservationItem represents one bookable line within a reservation.
//
// The Resource*/Rate* fields are snapshots copied from the live resource and
// rate at creation time. They are write-once: settlement and audit records
// must stay accurate even if the underlying resource or rate is later edited
// or deleted, so they are never re-derived from live data.
type ReservationItem struct {
	ID            uuid.UUID
	ReservationID uuid.UUID

	Resource ResourceRef
	RateID   uuid.UUID

	StartDate time.Time
	EndDate   time.Time
	StartTime *time.Time
	EndTime   *time.Time

	Quantity int32
	Status   ItemStatus

	// Snapshot fields, captured at creation.
	ResourceName        string
	ResourceTypeLabel   string
	ResourceDescription string
	RateName            string
	RateDescription     string
	RatePriceType       string
	RatePrice           int64
	Currency            string
	LineTotal           int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
