package models

import "time"

// Data is the complete snapshot produced by one collection cycle. Every
// harvest inside it is owned by this snapshot alone; nothing is shared with
// earlier or later cycles. A nil harvest means the domain was disabled or
// failed to collect this cycle.
type Data struct {
	CollectedAt time.Time
	Elapsed     time.Duration

	CPU       *CPUHarvest
	Memory    *MemHarvest
	Network   *NetworkHarvest
	Disks     []DiskHarvest
	Temps     []TempSensorData
	Batteries []BatteryHarvest
	Processes *ProcessData
}

// CPUHarvest carries both the cumulative per-core times read from the OS and
// the usage percentages derived from them. The cumulative times are kept so
// the next cycle can diff against this snapshot without the collector holding
// any state of its own.
type CPUHarvest struct {
	Cores []CPUCoreTimes

	// Usage holds per-core busy percentages (0-100), index-aligned with
	// Cores. Zero-valued on the first cycle.
	Usage []float64
	Avg   float64

	Load1  float64
	Load5  float64
	Load15 float64
}

// CPUCoreTimes are cumulative seconds since boot for one logical core.
type CPUCoreTimes struct {
	BusySecs  float64
	TotalSecs float64
}

// MemHarvest is a point-in-time view of RAM, swap, and page cache.
type MemHarvest struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	UsedPercent    float64

	SwapTotalBytes  uint64
	SwapUsedBytes   uint64
	SwapUsedPercent float64

	CachedBytes  uint64
	BuffersBytes uint64
}

// NetworkHarvest aggregates traffic across all interfaces that survive the
// configured interface filter. TotalRx/TotalTx are cumulative counters used
// for the next cycle's delta; the per-second rates are derived values.
type NetworkHarvest struct {
	TotalRx uint64
	TotalTx uint64

	RxBytesPerSec float64
	TxBytesPerSec float64
}

// DiskHarvest is one mounted filesystem plus its device's I/O counters.
type DiskHarvest struct {
	Device     string
	Mountpoint string
	Fstype     string

	TotalBytes  uint64
	FreeBytes   uint64
	UsedBytes   uint64
	UsedPercent float64

	TotalRead  uint64
	TotalWrite uint64

	ReadBytesPerSec  float64
	WriteBytesPerSec float64
}

// TempSensorData is one sensor reading, already converted to the configured
// temperature scale before it leaves the collector.
type TempSensorData struct {
	Sensor string
	Value  float64
	Scale  TemperatureScale
}

// BatteryHarvest reports one battery's charge state.
type BatteryHarvest struct {
	Percent          float64
	State            string
	SecondsRemaining int64
}

// Clone returns a deep copy of the snapshot. Used by the freeze feature so a
// frozen handle can never observe later live updates.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}

	out := &Data{
		CollectedAt: d.CollectedAt,
		Elapsed:     d.Elapsed,
	}

	if d.CPU != nil {
		cpu := *d.CPU
		cpu.Cores = append([]CPUCoreTimes(nil), d.CPU.Cores...)
		cpu.Usage = append([]float64(nil), d.CPU.Usage...)
		out.CPU = &cpu
	}
	if d.Memory != nil {
		mem := *d.Memory
		out.Memory = &mem
	}
	if d.Network != nil {
		net := *d.Network
		out.Network = &net
	}
	out.Disks = append([]DiskHarvest(nil), d.Disks...)
	out.Temps = append([]TempSensorData(nil), d.Temps...)
	out.Batteries = append([]BatteryHarvest(nil), d.Batteries...)
	out.Processes = d.Processes.Clone()

	return out
}
