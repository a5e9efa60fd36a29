package ports

import "context"

// CreateDisbursementRequest is a payout instruction for the external
// disbursement provider. ExternalID is the idempotency key; the provider is
// relied on to deduplicate on it so retries are safe.
type CreateDisbursementRequest struct {
	ExternalID        string
	BankCode          string
	AccountNumber     string
	AccountHolderName string
	Amount            int64
	Description       string
}

// DisbursementResult is the provider's structured response. A declined or
// rejected payout comes back with Success=false and a FailureReason rather
// than an error; errors are reserved for transport and unexpected failures.
type DisbursementResult struct {
	Success        bool
	DisbursementID string
	FailureReason  string
}

// DisbursementGateway is the external payout provider client.
type DisbursementGateway interface {
	CreateDisbursement(ctx context.Context, req *CreateDisbursementRequest) (*DisbursementResult, error)
}
