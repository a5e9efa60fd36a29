package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// BankAccountRepository implements ports.BankAccountStore.
type BankAccountRepository struct {
	pool *pgxpool.Pool
}

// NewBankAccountRepository creates a new bank account repository
func NewBankAccountRepository(db ports.DBPort) *BankAccountRepository {
	return &BankAccountRepository{pool: db.GetDB()}
}

func (r *BankAccountRepository) q(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return r.pool
}

// PrimaryVerifiedAccount resolves a recipient's payout destination.
//
// Partner accounts are looked up by the partner's global identity. Merchant
// (tenant) payout accounts are not modelled yet: merchant lookups always
// return none, so merchant distributions fail with "no bank account" until
// tenant payout accounts are designed.
// TODO: add tenant payout accounts and route merchant lookups through them.
func (r *BankAccountRepository) PrimaryVerifiedAccount(ctx context.Context, db ports.DBTX, recipientType models.RecipientType, recipientID uuid.UUID) (*models.BankAccount, error) {
	if recipientType != models.RecipientPartner {
		return nil, nil
	}

	var acct models.BankAccount
	err := r.q(db).QueryRow(ctx, `
		SELECT id, owner_id, bank_code, account_number, account_holder_name,
			is_primary, is_verified
		FROM bank_accounts
		WHERE owner_id = $1 AND is_primary AND is_verified
		LIMIT 1`, recipientID).Scan(
		&acct.ID, &acct.OwnerID, &acct.BankCode, &acct.AccountNumber,
		&acct.AccountHolderName, &acct.IsPrimary, &acct.IsVerified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve bank account: %w", err)
	}
	return &acct, nil
}
