package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) ConvertToPdf(ctx context.Context, filename string, data []byte) ([]byte, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
