package mocks

import (
	"context"

	"backendconf/internal/model"
	"backendconf/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) List(ctx context.Context, actor model.Actor, folderID *int64, limit, offset int) (*service.FolderListResult, error) {
	args := m.Called(ctx, actor, folderID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FolderListResult), args.Error(1)
}

func (m *MockFolderService) Simple(ctx context.Context, actor model.Actor) ([]model.FolderName, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FolderName), args.Error(1)
}

func (m *MockFolderService) Get(ctx context.Context, id int64) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Create(ctx context.Context, actor model.Actor, fm *service.FolderModel) (*model.Folder, error) {
	args := m.Called(ctx, actor, fm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Update(ctx context.Context, actor model.Actor, fm *service.FolderModel) (*model.Folder, error) {
	args := m.Called(ctx, actor, fm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
