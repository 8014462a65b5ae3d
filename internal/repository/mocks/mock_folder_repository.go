package mocks

import (
	"context"

	"backendconf/internal/model"
	"backendconf/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) FindByID(ctx context.Context, id int64) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) List(ctx context.Context, q repository.FolderQuery) (*repository.PageResult[model.Folder], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Folder]), args.Error(1)
}

func (m *MockFolderRepository) ListAll(ctx context.Context) ([]model.Folder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderRepository) Create(ctx context.Context, folder *model.Folder) (*model.Folder, error) {
	args := m.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) Apply(ctx context.Context, cs *model.FolderChangeSet) error {
	args := m.Called(ctx, cs)
	return args.Error(0)
}

func (m *MockFolderRepository) HasActiveDocuments(ctx context.Context, folderID int64) (bool, error) {
	args := m.Called(ctx, folderID)
	return args.Bool(0), args.Error(1)
}
