package mocks

import (
	"context"

	"cargoconnect/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, rec *model.DocumentRecord) (*model.DocumentRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.DocumentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) FindActive(ctx context.Context, shipmentID string, t model.DocumentType) (*model.DocumentRecord, error) {
	args := m.Called(ctx, shipmentID, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) ListByShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) TransitionStatus(ctx context.Context, id string, from, to model.DocumentStatus, reason string) (*model.DocumentRecord, error) {
	args := m.Called(ctx, id, from, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) AttachFile(ctx context.Context, id string, from, to model.DocumentStatus, fileURL string, size int64, contentType string) (*model.DocumentRecord, error) {
	args := m.Called(ctx, id, from, to, fileURL, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) UpdateMetadata(ctx context.Context, id string, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	args := m.Called(ctx, id, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
