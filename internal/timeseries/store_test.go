package timeseries_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termstat/termstat/internal/timeseries"
)

func TestStore_AppendAndSnapshot(t *testing.T) {
	store := timeseries.NewStore(time.Minute)
	base := time.Now()

	store.Append("cpu.avg", base, 10)
	store.Append("cpu.avg", base.Add(time.Second), 20)

	points := store.Snapshot("cpu.avg")
	require.Len(t, points, 2)
	assert.Equal(t, 10.0, points[0].Value)
	assert.Equal(t, 20.0, points[1].Value)
	assert.True(t, points[0].Time.Before(points[1].Time))
}

func TestStore_EvictsOutsideRetentionWindow(t *testing.T) {
	retention := 10 * time.Second
	store := timeseries.NewStore(retention)
	base := time.Now()

	for i := 0; i <= 100; i++ {
		store.Append("net.rx", base.Add(time.Duration(i)*time.Second), float64(i))
	}

	points := store.Snapshot("net.rx")
	require.Len(t, points, 11)
	assert.Equal(t, 90.0, points[0].Value)
	assert.Equal(t, 100.0, points[len(points)-1].Value)
}

func TestStore_LengthNeverExceedsRetentionBound(t *testing.T) {
	retention := 10 * time.Second
	minInterval := time.Second
	store := timeseries.NewStore(retention)
	base := time.Now()

	bound := int(retention/minInterval) + 1
	for i := 0; i < 1000; i++ {
		store.Append("mem.ram", base.Add(time.Duration(i)*minInterval), float64(i))
		assert.LessOrEqual(t, store.Len("mem.ram"), bound)
	}
}

func TestStore_DropsNonIncreasingTimestamps(t *testing.T) {
	store := timeseries.NewStore(time.Minute)
	base := time.Now()

	store.Append("cpu.avg", base, 1)
	store.Append("cpu.avg", base, 2)
	store.Append("cpu.avg", base.Add(-time.Second), 3)

	points := store.Snapshot("cpu.avg")
	require.Len(t, points, 1)
	assert.Equal(t, 1.0, points[0].Value)
}

func TestStore_SnapshotIsIndependentCopy(t *testing.T) {
	store := timeseries.NewStore(time.Minute)
	base := time.Now()

	store.Append("cpu.avg", base, 1)
	points := store.Snapshot("cpu.avg")
	store.Append("cpu.avg", base.Add(time.Second), 2)

	assert.Len(t, points, 1)
	assert.Len(t, store.Snapshot("cpu.avg"), 2)
}

func TestStore_UnknownKey(t *testing.T) {
	store := timeseries.NewStore(time.Minute)

	assert.Nil(t, store.Snapshot("nope"))
	assert.Zero(t, store.Len("nope"))
	assert.Empty(t, store.Keys())
}
