package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// MockQueue is a mock DisbursementQueue that records every enqueued
// distribution ID.
type MockQueue struct {
	mu       sync.Mutex
	enqueued []uuid.UUID

	// EnqueueErr fails every Enqueue call
	EnqueueErr error
}

// NewMockQueue creates a new mock queue
func NewMockQueue() *MockQueue {
	return &MockQueue{}
}

func (m *MockQueue) Enqueue(ctx context.Context, distributionID uuid.UUID) error {
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, distributionID)
	return nil
}

// Enqueued returns the IDs enqueued so far
func (m *MockQueue) Enqueued() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uuid.UUID, len(m.enqueued))
	copy(out, m.enqueued)
	return out
}

// MockBankAccountStore is a mock BankAccountStore keyed by recipient ID.
// Unseeded recipients resolve to (nil, nil).
type MockBankAccountStore struct {
	Accounts map[uuid.UUID]*models.BankAccount
	Err      error
}

// NewMockBankAccountStore creates an empty bank account store
func NewMockBankAccountStore() *MockBankAccountStore {
	return &MockBankAccountStore{Accounts: make(map[uuid.UUID]*models.BankAccount)}
}

func (m *MockBankAccountStore) PrimaryVerifiedAccount(ctx context.Context, db ports.DBTX, recipientType models.RecipientType, recipientID uuid.UUID) (*models.BankAccount, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Accounts[recipientID], nil
}

// MockDisbursementGateway is a mock payout provider client.
type MockDisbursementGateway struct {
	mu sync.Mutex

	Result *ports.DisbursementResult
	Err    error

	Calls   int
	LastReq *ports.CreateDisbursementRequest
}

// NewMockDisbursementGateway creates a gateway that succeeds by default
func NewMockDisbursementGateway() *MockDisbursementGateway {
	return &MockDisbursementGateway{
		Result: &ports.DisbursementResult{Success: true, DisbursementID: "disb-mock"},
	}
}

func (m *MockDisbursementGateway) CreateDisbursement(ctx context.Context, req *ports.CreateDisbursementRequest) (*ports.DisbursementResult, error) {
	m.mu.Lock()
	m.Calls++
	m.LastReq = req
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
