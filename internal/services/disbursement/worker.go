package disbursement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
	"github.com/kurniadi/booking-service/pkg/observability"
)

// Worker executes disbursement tasks: it pays one distribution out to
// its recipient's bank account through the external payout provider.
type Worker struct {
	distributions ports.DistributionRepository
	reservations  ports.ReservationRepository
	bankAccounts  ports.BankAccountStore
	gateway       ports.DisbursementGateway
	logger        ports.Logger
}

// NewWorker creates a new disbursement worker
func NewWorker(
	distributions ports.DistributionRepository,
	reservations ports.ReservationRepository,
	bankAccounts ports.BankAccountStore,
	gateway ports.DisbursementGateway,
	logger ports.Logger,
) *Worker {
	return &Worker{
		distributions: distributions,
		reservations:  reservations,
		bankAccounts:  bankAccounts,
		gateway:       gateway,
		logger:        logger,
	}
}

// Process handles one disbursement task. The queue delivers at least
// once, so the worker re-reads the distribution and returns silently
// when it no longer needs a payout.
//
// A nil return acks the task: success, a recorded provider rejection,
// and a missing bank account are all final. A non-nil return means the
// outcome is unknown (transport failure) and the task should be
// retried.
func (w *Worker) Process(ctx context.Context, distributionID uuid.UUID) error {
	start := time.Now()

	dist, err := w.distributions.GetByID(ctx, nil, distributionID)
	if err != nil {
		return fmt.Errorf("get distribution: %w", err)
	}

	// Duplicate-enqueue guard. Failed distributions are allowed
	// through so a retry after a transport error re-attempts from
	// scratch; completed, in-flight and platform rows are final here.
	if dist.RecipientType == models.RecipientPlatform ||
		dist.Status == models.DistributionCompleted ||
		dist.Status == models.DistributionProcessing {
		w.logger.Info("distribution does not need disbursement, skipping",
			ports.String("distribution_id", distributionID.String()),
			ports.String("status", string(dist.Status)),
			ports.String("recipient_type", string(dist.RecipientType)))
		observability.RecordDisbursementAttempt(string(dist.RecipientType), "skipped", time.Since(start).Seconds())
		return nil
	}

	if err := w.distributions.UpdateStatus(ctx, nil, dist.ID, models.DistributionProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	account, err := w.bankAccounts.PrimaryVerifiedAccount(ctx, nil, dist.RecipientType, dist.RecipientID)
	if err != nil {
		return w.failTransport(ctx, dist, start, fmt.Errorf("resolve bank account: %w", err))
	}
	if account == nil {
		w.logger.Warn("no bank account for recipient, marking failed",
			ports.String("distribution_id", dist.ID.String()),
			ports.String("recipient_type", string(dist.RecipientType)),
			ports.String("recipient_id", dist.RecipientID.String()))
		if err := w.distributions.MarkFailed(ctx, nil, dist.ID, domain.ErrNoBankAccount.Error()); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		observability.RecordDisbursementAttempt(string(dist.RecipientType), "no_bank_account", time.Since(start).Seconds())
		return nil
	}

	reservation, err := w.reservations.GetByID(ctx, nil, dist.ReservationID)
	if err != nil {
		return w.failTransport(ctx, dist, start, fmt.Errorf("get reservation: %w", err))
	}

	result, err := w.gateway.CreateDisbursement(ctx, &ports.CreateDisbursementRequest{
		ExternalID:        fmt.Sprintf("SETTLEMENT-%s", dist.ID),
		BankCode:          account.BankCode,
		AccountNumber:     account.AccountNumber,
		AccountHolderName: account.AccountHolderName,
		Amount:            dist.Amount,
		Description:       fmt.Sprintf("%s settlement - Reservation #%s", dist.RecipientType, reservation.Code),
	})
	if err != nil {
		return w.failTransport(ctx, dist, start, err)
	}

	if !result.Success {
		// Structured rejection from the provider. The failure is
		// recorded and the task is done; retrying would be rejected
		// again.
		if err := w.distributions.MarkFailed(ctx, nil, dist.ID, result.FailureReason); err != nil {
			return fmt.Errorf("mark failed: %w", err)
		}
		w.logger.Warn("disbursement rejected by provider",
			ports.String("distribution_id", dist.ID.String()),
			ports.String("reason", result.FailureReason))
		observability.RecordDisbursementAttempt(string(dist.RecipientType), "provider_failed", time.Since(start).Seconds())
		return nil
	}

	if err := w.distributions.MarkCompleted(ctx, nil, dist.ID, result.DisbursementID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	w.logger.Info("disbursement completed",
		ports.String("distribution_id", dist.ID.String()),
		ports.String("recipient_type", string(dist.RecipientType)),
		ports.String("provider_id", result.DisbursementID),
		ports.Int64("amount", dist.Amount))
	observability.RecordDisbursementAttempt(string(dist.RecipientType), "completed", time.Since(start).Seconds())

	return nil
}

// failTransport records the error on the distribution and returns it so
// the queue retries. The status stays failed between attempts; a later
// attempt that succeeds overwrites it with completed.
func (w *Worker) failTransport(ctx context.Context, dist *models.Distribution, start time.Time, cause error) error {
	if markErr := w.distributions.MarkFailed(ctx, nil, dist.ID, cause.Error()); markErr != nil {
		w.logger.Error("failed to record disbursement error",
			ports.String("distribution_id", dist.ID.String()),
			ports.Err(markErr))
	}
	observability.RecordDisbursementAttempt(string(dist.RecipientType), "transport_error", time.Since(start).Seconds())
	return domain.WrapError(domain.ErrorCodeDisbursementTransport, "disbursement attempt failed", cause)
}
