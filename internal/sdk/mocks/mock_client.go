package mocks

import (
	"context"

	"backendconf/internal/sdk"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) CaseDelete(ctx context.Context, caseID int64) error {
	args := m.Called(ctx, caseID)
	return args.Error(0)
}

func (m *MockClient) CaseCreate(ctx context.Context, folderID, siteID int64) (int64, error) {
	args := m.Called(ctx, folderID, siteID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClient) FolderCreate(ctx context.Context, translations []sdk.Translation, parentID int64) (int64, error) {
	args := m.Called(ctx, translations, parentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClient) FolderUpdate(ctx context.Context, folderID int64, translations []sdk.Translation, parentID *int64) error {
	args := m.Called(ctx, folderID, translations, parentID)
	return args.Error(0)
}

func (m *MockClient) FolderLookup(ctx context.Context, parentID int64, name string) (int64, bool, error) {
	args := m.Called(ctx, parentID, name)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
