package mocks

import (
	"context"

	"backendconf/internal/model"
	"backendconf/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Index(ctx context.Context, actor model.Actor, req service.DocumentIndexRequest) (*service.DocumentListResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Names(ctx context.Context, actor model.Actor, propertyID int64) ([]model.DocumentName, error) {
	args := m.Called(ctx, actor, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentName), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Create(ctx context.Context, actor model.Actor, dm *service.DocumentModel) (*model.Document, error) {
	args := m.Called(ctx, actor, dm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, actor model.Actor, dm *service.DocumentModel) (*model.Document, error) {
	args := m.Called(ctx, actor, dm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockDocumentService) FileURL(ctx context.Context, id, languageID int64, extension string) (string, error) {
	args := m.Called(ctx, id, languageID, extension)
	return args.String(0), args.Error(1)
}
