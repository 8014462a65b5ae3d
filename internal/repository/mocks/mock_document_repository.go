package mocks

import (
	"context"

	"backendconf/internal/model"
	"backendconf/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, q repository.DocumentQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) Names(ctx context.Context, languageID, propertyID int64) ([]model.DocumentName, error) {
	args := m.Called(ctx, languageID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentName), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Apply(ctx context.Context, cs *model.DocumentChangeSet) error {
	args := m.Called(ctx, cs)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveSite(ctx context.Context, site *model.DocumentSite) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}
