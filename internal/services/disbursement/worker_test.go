package disbursement

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/test/mocks"
)

type workerFixture struct {
	worker        *Worker
	distributions *mocks.MockDistributionRepository
	reservations  *mocks.MockReservationRepository
	bankAccounts  *mocks.MockBankAccountStore
	gateway       *mocks.MockDisbursementGateway

	reservation  *models.Reservation
	distribution *models.Distribution
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	f := &workerFixture{
		distributions: mocks.NewMockDistributionRepository(),
		reservations:  mocks.NewMockReservationRepository(),
		bankAccounts:  mocks.NewMockBankAccountStore(),
		gateway:       mocks.NewMockDisbursementGateway(),
	}
	f.worker = NewWorker(f.distributions, f.reservations, f.bankAccounts,
		f.gateway, mocks.NewMockLogger())

	f.reservation = &models.Reservation{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Code:     "WXYZ234567",
		Status:   models.ReservationCompleted,
	}
	f.reservations.Add(f.reservation)

	partnerID := uuid.New()
	f.distribution = &models.Distribution{
		ID:            uuid.New(),
		TenantID:      f.reservation.TenantID,
		ReservationID: f.reservation.ID,
		ItemID:        uuid.New(),
		RecipientType: models.RecipientPartner,
		RecipientID:   partnerID,
		Amount:        70000,
		Currency:      "IDR",
		Status:        models.DistributionPending,
	}
	f.distributions.Add(f.distribution)

	f.bankAccounts.Accounts[partnerID] = &models.BankAccount{
		ID:                uuid.New(),
		OwnerID:           partnerID,
		BankCode:          "BCA",
		AccountNumber:     "1234567890",
		AccountHolderName: "Bali Tours",
		IsPrimary:         true,
		IsVerified:        true,
	}

	return f
}

func TestWorkerProcess_Success(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.Result.DisbursementID = "disb-xyz"

	err := f.worker.Process(context.Background(), f.distribution.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DistributionCompleted, f.distribution.Status)
	assert.Equal(t, "disb-xyz", f.distribution.DisbursementID)
	require.NotNil(t, f.distribution.DisbursedAt)

	require.Equal(t, 1, f.gateway.Calls)
	req := f.gateway.LastReq
	assert.Equal(t, fmt.Sprintf("SETTLEMENT-%s", f.distribution.ID), req.ExternalID)
	assert.Equal(t, "BCA", req.BankCode)
	assert.Equal(t, "1234567890", req.AccountNumber)
	assert.Equal(t, int64(70000), req.Amount)
	assert.Contains(t, req.Description, "WXYZ234567")
	assert.Contains(t, req.Description, "partner")
}

func TestWorkerProcess_SkipsCompleted(t *testing.T) {
	f := newWorkerFixture(t)
	f.distribution.Status = models.DistributionCompleted

	err := f.worker.Process(context.Background(), f.distribution.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.Calls)
}

func TestWorkerProcess_SkipsProcessing(t *testing.T) {
	f := newWorkerFixture(t)
	f.distribution.Status = models.DistributionProcessing

	err := f.worker.Process(context.Background(), f.distribution.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.Calls)
}

func TestWorkerProcess_SkipsPlatform(t *testing.T) {
	f := newWorkerFixture(t)
	f.distribution.RecipientType = models.RecipientPlatform
	f.distribution.Status = models.DistributionPending

	err := f.worker.Process(context.Background(), f.distribution.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.Calls)
}

func TestWorkerProcess_RetriesFailedDistribution(t *testing.T) {
	f := newWorkerFixture(t)
	// A previous attempt hit a transport error and left the row failed;
	// the redelivered task must re-attempt the payout.
	f.distribution.Status = models.DistributionFailed

	err := f.worker.Process(context.Background(), f.distribution.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.Calls)
	assert.Equal(t, models.DistributionCompleted, f.distribution.Status)
}

func TestWorkerProcess_NoBankAccountIsTerminal(t *testing.T) {
	f := newWorkerFixture(t)
	delete(f.bankAccounts.Accounts, f.distribution.RecipientID)

	err := f.worker.Process(context.Background(), f.distribution.ID)

	// Terminal outcome: the task is acked, the failure recorded.
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.Calls)
	assert.Equal(t, models.DistributionFailed, f.distribution.Status)
	assert.Equal(t, domain.ErrNoBankAccount.Error(), f.distributions.FailReasons[f.distribution.ID])
}

func TestWorkerProcess_ProviderRejectionIsTerminal(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.Result.Success = false
	f.gateway.Result.FailureReason = "INVALID_DESTINATION: account is closed"

	err := f.worker.Process(context.Background(), f.distribution.ID)

	require.NoError(t, err)
	assert.Equal(t, models.DistributionFailed, f.distribution.Status)
	assert.Equal(t, "INVALID_DESTINATION: account is closed", f.distributions.FailReasons[f.distribution.ID])
}

func TestWorkerProcess_TransportErrorTriggersRetry(t *testing.T) {
	f := newWorkerFixture(t)
	f.gateway.Err = assert.AnError

	err := f.worker.Process(context.Background(), f.distribution.ID)

	// Unknown outcome: the error propagates so the queue retries.
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeDisbursementTransport))
	assert.Equal(t, models.DistributionFailed, f.distribution.Status)
}

func TestWorkerProcess_UnknownDistribution(t *testing.T) {
	f := newWorkerFixture(t)

	err := f.worker.Process(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDistributionNotFound)
}
