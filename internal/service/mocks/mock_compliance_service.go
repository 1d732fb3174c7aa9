package mocks

import (
	"context"

	"cargoconnect/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) Evaluate(ctx context.Context, shipmentID, jurisdiction string, policy model.CompliancePolicy) (*model.ComplianceView, error) {
	args := m.Called(ctx, shipmentID, jurisdiction, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceView), args.Error(1)
}

func (m *MockComplianceService) GenerateForms(ctx context.Context, shipmentID, jurisdiction string) ([]model.FormDescriptor, error) {
	args := m.Called(ctx, shipmentID, jurisdiction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FormDescriptor), args.Error(1)
}

func (m *MockComplianceService) DefaultPolicy() model.CompliancePolicy {
	args := m.Called()
	return args.Get(0).(model.CompliancePolicy)
}
