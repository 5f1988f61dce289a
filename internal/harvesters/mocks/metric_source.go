// Package mocks provides testify mocks for the harvester contracts.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/models"
)

// MetricSource is a testify mock of harvesters.MetricSource.
type MetricSource struct {
	mock.Mock
}

func (m *MetricSource) CPU(ctx context.Context) (*models.CPUHarvest, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.(*models.CPUHarvest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricSource) Memory(ctx context.Context) (*models.MemHarvest, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.(*models.MemHarvest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricSource) Network(ctx context.Context, filter *filters.Filter) (*models.NetworkHarvest, error) {
	args := m.Called(ctx, filter)
	if h := args.Get(0); h != nil {
		return h.(*models.NetworkHarvest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricSource) Disks(ctx context.Context, filter *filters.Filter) ([]models.DiskHarvest, error) {
	args := m.Called(ctx, filter)
	if h := args.Get(0); h != nil {
		return h.([]models.DiskHarvest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricSource) Temperatures(ctx context.Context, filter *filters.Filter, scale models.TemperatureScale) ([]models.TempSensorData, error) {
	args := m.Called(ctx, filter, scale)
	if h := args.Get(0); h != nil {
		return h.([]models.TempSensorData), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricSource) Processes(ctx context.Context) ([]models.RawProcessRecord, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.([]models.RawProcessRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MetricSource) Batteries(ctx context.Context) ([]models.BatteryHarvest, error) {
	args := m.Called(ctx)
	if h := args.Get(0); h != nil {
		return h.([]models.BatteryHarvest), args.Error(1)
	}
	return nil, args.Error(1)
}
