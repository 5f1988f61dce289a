package services_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/termstat/termstat/internal/collect"
	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/harvesters/mocks"
	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/services"
	"github.com/termstat/termstat/internal/timeseries"
)

const testInterval = 50 * time.Millisecond

func newTestService(t *testing.T, source *mocks.MetricSource, mask models.DomainMask) (*services.CollectionService, *timeseries.Store) {
	t.Helper()

	flt, err := filters.NewSet(models.DefaultMonitorConfig())
	require.NoError(t, err)

	collector := collect.NewCollector(source, collect.NewUserTable(), zerolog.Nop(), collect.Options{
		Normalization: models.NormalizePerCore,
	})
	store := timeseries.NewStore(time.Minute)
	svc := services.NewCollectionService(testInterval, mask, flt, collector, store, zerolog.Nop())
	return svc, store
}

func waitForUpdates(t *testing.T, svc *services.CollectionService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-svc.Updates():
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for update %d of %d", i+1, n)
		}
	}
}

func procBatch(names ...string) []models.RawProcessRecord {
	records := make([]models.RawProcessRecord, 0, len(names))
	for i, name := range names {
		records = append(records, models.RawProcessRecord{
			Pid:        int32(i + 1),
			ParentPid:  models.NoParent,
			Name:       name,
			CPUPercent: -1,
			UID:        models.NoUID,
		})
	}
	return records
}

func TestCollectionService_PublishesSnapshots(t *testing.T) {
	source := new(mocks.MetricSource)
	source.On("Memory", mock.Anything).Return(&models.MemHarvest{UsedPercent: 33}, nil)

	svc, store := newTestService(t, source, models.DomainMemory)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	waitForUpdates(t, svc, 2)

	data := svc.Latest()
	require.NotNil(t, data)
	assert.InDelta(t, 33.0, data.Memory.UsedPercent, 0.001)
	assert.GreaterOrEqual(t, store.Len(timeseries.KeyRAM), 2)
}

func TestCollectionService_SnapshotsAreTotallyOrdered(t *testing.T) {
	source := new(mocks.MetricSource)
	source.On("Memory", mock.Anything).Return(&models.MemHarvest{}, nil)

	svc, _ := newTestService(t, source, models.DomainMemory)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	waitForUpdates(t, svc, 1)
	first := svc.Latest()
	waitForUpdates(t, svc, 1)
	second := svc.Latest()

	assert.True(t, !second.CollectedAt.Before(first.CollectedAt))
}

func TestCollectionService_FreezePinsDisplayWhileCollectionContinues(t *testing.T) {
	source := new(mocks.MetricSource)
	source.On("Processes", mock.Anything).Return(procBatch("alpha"), nil).Once()
	source.On("Processes", mock.Anything).Return(procBatch("alpha", "beta"), nil)

	svc, _ := newTestService(t, source, models.DomainProcess)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	waitForUpdates(t, svc, 1)
	require.True(t, svc.ToggleFreeze())
	frozen := svc.Display()
	require.NotNil(t, frozen)
	frozenNames := harvestNames(frozen.Processes)

	// Two more live cycles while frozen.
	waitForUpdates(t, svc, 2)

	assert.True(t, svc.IsFrozen())
	assert.Same(t, frozen, svc.Display())
	assert.ElementsMatch(t, frozenNames, harvestNames(svc.Display().Processes))

	// Collection never stopped: the live snapshot moved on.
	assert.NotEqual(t, len(frozen.Processes.Harvest), len(svc.Latest().Processes.Harvest))

	// Thaw exposes the latest live snapshot, not the frozen copy.
	assert.False(t, svc.ToggleFreeze())
	assert.Same(t, svc.Latest(), svc.Display())
}

func TestCollectionService_FrozenCopyIsIndependent(t *testing.T) {
	source := new(mocks.MetricSource)
	source.On("Processes", mock.Anything).Return(procBatch("alpha"), nil)

	svc, _ := newTestService(t, source, models.DomainProcess)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	waitForUpdates(t, svc, 1)
	live := svc.Latest()
	require.True(t, svc.ToggleFreeze())
	frozen := svc.Display()

	assert.NotSame(t, live, frozen)
	for pid := range live.Processes.Harvest {
		assert.NotSame(t, live.Processes.Harvest[pid], frozen.Processes.Harvest[pid])
	}
}

func TestCollectionService_FailedCycleKeepsPreviousSnapshot(t *testing.T) {
	source := new(mocks.MetricSource)
	source.On("Memory", mock.Anything).Return(&models.MemHarvest{UsedPercent: 10}, nil).Once()
	source.On("Memory", mock.Anything).Return(nil, assert.AnError)

	svc, _ := newTestService(t, source, models.DomainMemory)
	require.NoError(t, svc.Start())
	defer svc.Stop()

	waitForUpdates(t, svc, 1)
	first := svc.Latest()
	require.NotNil(t, first)

	// Give the loop time for several failing cycles; the published snapshot
	// must not regress or vanish.
	time.Sleep(5 * testInterval)
	assert.Same(t, first, svc.Latest())
}

func TestCollectionService_StartStop(t *testing.T) {
	source := new(mocks.MetricSource)
	source.On("Memory", mock.Anything).Return(&models.MemHarvest{}, nil)

	svc, _ := newTestService(t, source, models.DomainMemory)

	require.Error(t, svc.Stop()) // not running yet

	require.NoError(t, svc.Start())
	require.Error(t, svc.Start()) // double start

	waitForUpdates(t, svc, 1)
	require.NoError(t, svc.Stop())
}

func harvestNames(p *models.ProcessData) []string {
	var names []string
	for _, h := range p.Harvest {
		names = append(names, h.Name)
	}
	return names
}
