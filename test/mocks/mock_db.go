package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MockDB is a mock implementation of DBPort for testing. Transactions
// execute the callback directly with a nil pgx.Tx; repositories under test
// are mocks too and never touch it.
type MockDB struct {
	// BeginErr, when set, fails WithTransaction before the callback runs
	BeginErr error

	// TransactionCalls counts WithTransaction invocations
	TransactionCalls int
}

// NewMockDB creates a new mock database port
func NewMockDB() *MockDB {
	return &MockDB{}
}

// GetDB returns nil; mock repositories never dereference the pool
func (m *MockDB) GetDB() *pgxpool.Pool {
	return nil
}

// WithTransaction runs fn directly, simulating a committed transaction
func (m *MockDB) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	m.TransactionCalls++
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(ctx, nil)
}
