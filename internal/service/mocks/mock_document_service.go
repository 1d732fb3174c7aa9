package mocks

import (
	"context"
	"io"
	"time"

	"cargoconnect/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Register(ctx context.Context, shipmentID string, docType model.DocumentType, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	args := m.Called(ctx, shipmentID, docType, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentService) AttachFile(ctx context.Context, documentID string, r io.Reader, originalFilename, contentType string, size int64) (*model.DocumentRecord, error) {
	args := m.Called(ctx, documentID, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentService) Review(ctx context.Context, documentID string, to model.DocumentStatus, reason string) (*model.DocumentRecord, error) {
	args := m.Called(ctx, documentID, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentService) UpdateMetadata(ctx context.Context, documentID string, meta model.DocumentMetadata) (*model.DocumentRecord, error) {
	args := m.Called(ctx, documentID, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, documentID string) (*model.DocumentRecord, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentService) ListForShipment(ctx context.Context, shipmentID string) ([]model.DocumentRecord, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRecord), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, documentID string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, documentID, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}
