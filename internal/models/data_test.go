package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termstat/termstat/internal/models"
)

func sampleData() *models.Data {
	return &models.Data{
		CollectedAt: time.Now(),
		Elapsed:     time.Second,
		CPU: &models.CPUHarvest{
			Cores: []models.CPUCoreTimes{{BusySecs: 1, TotalSecs: 10}},
			Usage: []float64{10},
			Avg:   10,
		},
		Memory:  &models.MemHarvest{UsedBytes: 100, TotalBytes: 200},
		Network: &models.NetworkHarvest{TotalRx: 1000, RxBytesPerSec: 50},
		Disks:   []models.DiskHarvest{{Device: "/dev/sda1", Mountpoint: "/"}},
		Temps:   []models.TempSensorData{{Sensor: "coretemp", Value: 50}},
		Processes: &models.ProcessData{
			Harvest: map[int32]*models.ProcessHarvest{
				1: {Pid: 1, Name: "init", MergedPids: []int32{1}},
			},
			ParentMapping: map[int32][]int32{1: {2}},
			OrphanPids:    []int32{1},
			Counters:      map[int32]models.PidCounters{1: {CPUTimeSecs: 2}},
		},
	}
}

func TestDataClone_IsDeep(t *testing.T) {
	orig := sampleData()
	clone := orig.Clone()

	require.NotSame(t, orig, clone)
	assert.Equal(t, orig, clone)

	// Mutating the original must never show through the clone.
	orig.CPU.Usage[0] = 99
	orig.Memory.UsedBytes = 999
	orig.Disks[0].Device = "/dev/sdb1"
	orig.Processes.Harvest[1].Name = "mutated"
	orig.Processes.ParentMapping[1][0] = 42
	orig.Processes.OrphanPids[0] = 7
	orig.Processes.Counters[1] = models.PidCounters{CPUTimeSecs: 9}

	assert.InDelta(t, 10.0, clone.CPU.Usage[0], 0.001)
	assert.Equal(t, uint64(100), clone.Memory.UsedBytes)
	assert.Equal(t, "/dev/sda1", clone.Disks[0].Device)
	assert.Equal(t, "init", clone.Processes.Harvest[1].Name)
	assert.Equal(t, int32(2), clone.Processes.ParentMapping[1][0])
	assert.Equal(t, int32(1), clone.Processes.OrphanPids[0])
	assert.InDelta(t, 2.0, clone.Processes.Counters[1].CPUTimeSecs, 0.001)
}

func TestDataClone_Nil(t *testing.T) {
	var d *models.Data
	assert.Nil(t, d.Clone())

	var p *models.ProcessData
	assert.Nil(t, p.Clone())
}
