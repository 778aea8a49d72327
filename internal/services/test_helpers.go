package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vgpulse/internal/dataprocessing"
)

// MockDatasetSource is a mock for the DatasetSource interface
type MockDatasetSource struct {
	mock.Mock
}

func (m *MockDatasetSource) Get(ctx context.Context, path string) (*dataprocessing.Dataset, error) {
	args := m.Called(ctx, path)
	ds, _ := args.Get(0).(*dataprocessing.Dataset)
	return ds, args.Error(1)
}

func (m *MockDatasetSource) Invalidate(path string) {
	m.Called(path)
}

func (m *MockDatasetSource) Stats() dataprocessing.CacheStats {
	args := m.Called()
	stats, _ := args.Get(0).(dataprocessing.CacheStats)
	return stats
}
