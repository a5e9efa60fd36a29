package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/kurniadi/booking-service/internal/domain/models"
	"github.com/kurniadi/booking-service/internal/domain/ports"
)

// MockCatalog is an in-memory ResourceCatalog. Unseeded lookups return
// (nil, nil), matching the real adapter's missing-record behavior.
type MockCatalog struct {
	Resources   map[models.ResourceRef]*models.Resource
	Rates       map[uuid.UUID]*models.Rate
	Configs     map[models.ResourceRef]*models.CommissionConfig
	Assignments map[models.ResourceRef]*models.PartnerAssignment

	ResolveErr    error
	RateErr       error
	ConfigErr     error
	AssignmentErr error
}

// NewMockCatalog creates an empty catalog
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Resources:   make(map[models.ResourceRef]*models.Resource),
		Rates:       make(map[uuid.UUID]*models.Rate),
		Configs:     make(map[models.ResourceRef]*models.CommissionConfig),
		Assignments: make(map[models.ResourceRef]*models.PartnerAssignment),
	}
}

func (m *MockCatalog) ResolveResource(ctx context.Context, db ports.DBTX, ref models.ResourceRef) (*models.Resource, error) {
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	return m.Resources[ref], nil
}

func (m *MockCatalog) ResolveRate(ctx context.Context, db ports.DBTX, rateID uuid.UUID) (*models.Rate, error) {
	if m.RateErr != nil {
		return nil, m.RateErr
	}
	return m.Rates[rateID], nil
}

func (m *MockCatalog) CommissionConfig(ctx context.Context, db ports.DBTX, ref models.ResourceRef) (*models.CommissionConfig, error) {
	if m.ConfigErr != nil {
		return nil, m.ConfigErr
	}
	return m.Configs[ref], nil
}

func (m *MockCatalog) PartnerAssignment(ctx context.Context, db ports.DBTX, ref models.ResourceRef) (*models.PartnerAssignment, error) {
	if m.AssignmentErr != nil {
		return nil, m.AssignmentErr
	}
	return m.Assignments[ref], nil
}
