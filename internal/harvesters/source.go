// Package harvesters abstracts the per-platform OS metric APIs behind one
// capability set consumed by the data collector.
package harvesters

import (
	"context"
	"errors"
	"fmt"

	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/models"
)

// ErrUnsupported marks a metric domain that has no implementation on the
// current platform. It is never retried; the domain stays absent for the
// whole session.
var ErrUnsupported = errors.New("metric domain unsupported on this platform")

// DomainError scopes a collection failure to the metric domain it came from,
// so one failing domain never aborts the rest of the cycle.
type DomainError struct {
	Domain string
	Err    error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s collection failed: %v", e.Domain, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// MetricSource is the capability set every platform metric backend satisfies.
// Each call may fail independently with a domain-scoped error. Counter-valued
// results (network, disk and process I/O, CPU times) are cumulative; rate
// computation belongs to the collector. Derived fields such as
// CPUHarvest.Usage may be left nil; the collector fills them.
type MetricSource interface {
	CPU(ctx context.Context) (*models.CPUHarvest, error)
	Memory(ctx context.Context) (*models.MemHarvest, error)
	Network(ctx context.Context, filter *filters.Filter) (*models.NetworkHarvest, error)
	Disks(ctx context.Context, filter *filters.Filter) ([]models.DiskHarvest, error)
	Temperatures(ctx context.Context, filter *filters.Filter, scale models.TemperatureScale) ([]models.TempSensorData, error)
	Processes(ctx context.Context) ([]models.RawProcessRecord, error)
	Batteries(ctx context.Context) ([]models.BatteryHarvest, error)
}
