package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain"
	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// MockReservationRepository is an in-memory ReservationRepository for
// testing, with injectable per-method errors.
type MockReservationRepository struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*models.Reservation

	CreateErr       error
	GetErr          error
	CodeExistsErr   error
	UpdateStatusErr error
	UpdateTotalsErr error

	// TakenCodes forces CodeExists to report the code as taken the
	// given number of times before it frees up.
	TakenCodes map[string]int

	UpdateStatusCalls int
}

// NewMockReservationRepository creates an empty reservation repository
func NewMockReservationRepository() *MockReservationRepository {
	return &MockReservationRepository{
		reservations: make(map[uuid.UUID]*models.Reservation),
		TakenCodes:   make(map[string]int),
	}
}

// Add seeds a reservation
func (m *MockReservationRepository) Add(r *models.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.ID] = r
}

// Get returns the stored reservation for assertions
func (m *MockReservationRepository) Get(id uuid.UUID) *models.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id]
}

func (m *MockReservationRepository) Create(ctx context.Context, tx ports.DBTX, reservation *models.Reservation) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Reservation, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return r, nil
}

func (m *MockReservationRepository) GetByCode(ctx context.Context, db ports.DBTX, tenantID uuid.UUID, code string) (*models.Reservation, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.TenantID == tenantID && r.Code == code {
			return r, nil
		}
	}
	return nil, domain.ErrReservationNotFound
}

func (m *MockReservationRepository) CodeExists(ctx context.Context, db ports.DBTX, tenantID uuid.UUID, code string) (bool, error) {
	if m.CodeExistsErr != nil {
		return false, m.CodeExistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.TakenCodes[code]; ok && n > 0 {
		m.TakenCodes[code] = n - 1
		return true, nil
	}
	for _, r := range m.reservations {
		if r.TenantID == tenantID && r.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.ReservationStatus) error {
	m.mu.Lock()
	m.UpdateStatusCalls++
	m.mu.Unlock()
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Status = status
	return nil
}

func (m *MockReservationRepository) UpdateTotals(ctx context.Context, tx ports.DBTX, reservation *models.Reservation) error {
	if m.UpdateTotalsErr != nil {
		return m.UpdateTotalsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[reservation.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Subtotal = reservation.Subtotal
	r.DiscountAmount = reservation.DiscountAmount
	r.TaxAmount = reservation.TaxAmount
	r.TotalAmount = reservation.TotalAmount
	return nil
}

// MockItemRepository is an in-memory ReservationItemRepository.
type MockItemRepository struct {
	mu    sync.Mutex
	items []*models.ReservationItem

	CreateErr       error
	GetErr          error
	ListErr         error
	UpdateStatusErr error
}

// NewMockItemRepository creates an empty item repository
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{}
}

// Add seeds an item
func (m *MockItemRepository) Add(item *models.ReservationItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

// Items returns all stored items for assertions
func (m *MockItemRepository) Items() []*models.ReservationItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ReservationItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *MockItemRepository) Create(ctx context.Context, tx ports.DBTX, item *models.ReservationItem) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

func (m *MockItemRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.ReservationItem, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (m *MockItemRepository) ListByReservation(ctx context.Context, db ports.DBTX, reservationID uuid.UUID) ([]*models.ReservationItem, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ReservationItem
	for _, item := range m.items {
		if item.ReservationID == reservationID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockItemRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.ItemStatus) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			item.Status = status
			return nil
		}
	}
	return domain.ErrItemNotFound
}

// MockDistributionRepository is an in-memory DistributionRepository.
type MockDistributionRepository struct {
	mu            sync.Mutex
	distributions []*models.Distribution

	CreateErr       error
	GetErr          error
	ExistsErr       error
	UpdateStatusErr error
	MarkCompleteErr error
	MarkFailedErr   error
	ListPendingErr  error

	// AlreadySettled forces ExistsForReservation to report true
	AlreadySettled bool

	// Pending is returned by ListPendingNeedingDisbursement
	Pending []*models.Distribution

	// FailReasons records MarkFailed reasons by distribution ID
	FailReasons map[uuid.UUID]string
}

// NewMockDistributionRepository creates an empty distribution repository
func NewMockDistributionRepository() *MockDistributionRepository {
	return &MockDistributionRepository{
		FailReasons: make(map[uuid.UUID]string),
	}
}

// Add seeds a distribution
func (m *MockDistributionRepository) Add(d *models.Distribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distributions = append(m.distributions, d)
}

// Created returns all stored distributions for assertions
func (m *MockDistributionRepository) Created() []*models.Distribution {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Distribution, len(m.distributions))
	copy(out, m.distributions)
	return out
}

func (m *MockDistributionRepository) Create(ctx context.Context, tx ports.DBTX, d *models.Distribution) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distributions = append(m.distributions, d)
	return nil
}

func (m *MockDistributionRepository) GetByID(ctx context.Context, db ports.DBTX, id uuid.UUID) (*models.Distribution, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.distributions {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrDistributionNotFound
}

func (m *MockDistributionRepository) ListByReservation(ctx context.Context, db ports.DBTX, reservationID uuid.UUID) ([]*models.Distribution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Distribution
	for _, d := range m.distributions {
		if d.ReservationID == reservationID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockDistributionRepository) ExistsForReservation(ctx context.Context, db ports.DBTX, reservationID uuid.UUID) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	if m.AlreadySettled {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.distributions {
		if d.ReservationID == reservationID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDistributionRepository) UpdateStatus(ctx context.Context, tx ports.DBTX, id uuid.UUID, status models.DistributionStatus) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.distributions {
		if d.ID == id {
			d.Status = status
			return nil
		}
	}
	return domain.ErrDistributionNotFound
}

func (m *MockDistributionRepository) MarkCompleted(ctx context.Context, tx ports.DBTX, id uuid.UUID, disbursementID string, disbursedAt time.Time) error {
	if m.MarkCompleteErr != nil {
		return m.MarkCompleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.distributions {
		if d.ID == id {
			d.Status = models.DistributionCompleted
			d.DisbursementID = disbursementID
			d.DisbursedAt = &disbursedAt
			return nil
		}
	}
	return domain.ErrDistributionNotFound
}

func (m *MockDistributionRepository) MarkFailed(ctx context.Context, tx ports.DBTX, id uuid.UUID, reason string) error {
	if m.MarkFailedErr != nil {
		return m.MarkFailedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.distributions {
		if d.ID == id {
			d.Status = models.DistributionFailed
			m.FailReasons[id] = reason
			return nil
		}
	}
	return domain.ErrDistributionNotFound
}

func (m *MockDistributionRepository) ListPendingNeedingDisbursement(ctx context.Context, db ports.DBTX, cutoff time.Time, limit int32) ([]*models.Distribution, error) {
	if m.ListPendingErr != nil {
		return nil, m.ListPendingErr
	}
	return m.Pending, nil
}
