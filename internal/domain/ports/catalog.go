package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain/models"
)

// ResourceCatalog resolves bookable resources, their rates, commission
// configuration and partner assignment. Resource management is an external
// collaborator; the settlement core only reads from it.
//
// Lookups return (nil, nil) when the record does not exist: a deleted or
// missing resource is an expected business outcome, not an error.
type ResourceCatalog interface {
	ResolveResource(ctx context.Context, db DBTX, ref models.ResourceRef) (*models.Resource, error)
	ResolveRate(ctx context.Context, db DBTX, rateID uuid.UUID) (*models.Rate, error)
	CommissionConfig(ctx context.Context, db DBTX, ref models.ResourceRef) (*models.CommissionConfig, error)
	PartnerAssignment(ctx context.Context, db DBTX, ref models.ResourceRef) (*models.PartnerAssignment, error)
}

// BankAccountStore resolves a recipient's primary verified bank account.
// Returns (nil, nil) when the recipient has no usable account.
type BankAccountStore interface {
	PrimaryVerifiedAccount(ctx context.Context, db DBTX, recipientType models.RecipientType, recipientID uuid.UUID) (*models.BankAccount, error)
}
