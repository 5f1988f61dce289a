package harvesters

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/utils"
)

// GopsutilSource reads metrics through gopsutil, which carries the per-OS
// dispatch for Linux, macOS, Windows, and FreeBSD. Battery reads are the one
// platform-specific path, kept behind build tags.
type GopsutilSource struct {
	Logger     zerolog.Logger
	WorkerPool *utils.WorkerPool
}

// NewGopsutilSource builds a source that fans per-process reads out over the
// given worker pool.
func NewGopsutilSource(logger zerolog.Logger, pool *utils.WorkerPool) *GopsutilSource {
	return &GopsutilSource{Logger: logger, WorkerPool: pool}
}

func (g *GopsutilSource) CPU(ctx context.Context) (*models.CPUHarvest, error) {
	times, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return nil, &DomainError{Domain: "cpu", Err: err}
	}
	if len(times) == 0 {
		return nil, &DomainError{Domain: "cpu", Err: ErrUnsupported}
	}

	harvest := &models.CPUHarvest{
		Cores: make([]models.CPUCoreTimes, len(times)),
		Usage: make([]float64, len(times)),
	}
	for i, t := range times {
		total := t.Total()
		harvest.Cores[i] = models.CPUCoreTimes{
			BusySecs:  total - t.Idle - t.Iowait,
			TotalSecs: total,
		}
	}

	// Load average is best-effort; unavailable on Windows.
	if avg, err := load.AvgWithContext(ctx); err == nil {
		harvest.Load1 = avg.Load1
		harvest.Load5 = avg.Load5
		harvest.Load15 = avg.Load15
	}

	return harvest, nil
}

func (g *GopsutilSource) Memory(ctx context.Context) (*models.MemHarvest, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, &DomainError{Domain: "memory", Err: err}
	}

	harvest := &models.MemHarvest{
		TotalBytes:     vm.Total,
		UsedBytes:      vm.Used,
		AvailableBytes: vm.Available,
		UsedPercent:    vm.UsedPercent,
		CachedBytes:    vm.Cached,
		BuffersBytes:   vm.Buffers,
	}

	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		harvest.SwapTotalBytes = swap.Total
		harvest.SwapUsedBytes = swap.Used
		harvest.SwapUsedPercent = swap.UsedPercent
	} else {
		g.Logger.Warn().Err(err).Msg("Failed to read swap memory")
	}

	return harvest, nil
}

func (g *GopsutilSource) Network(ctx context.Context, filter *filters.Filter) (*models.NetworkHarvest, error) {
	counters, err := gnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, &DomainError{Domain: "network", Err: err}
	}

	harvest := &models.NetworkHarvest{}
	for _, nic := range counters {
		if !filter.KeepEntry(nic.Name) {
			continue
		}
		harvest.TotalRx += nic.BytesRecv
		harvest.TotalTx += nic.BytesSent
	}

	return harvest, nil
}

func (g *GopsutilSource) Disks(ctx context.Context, filter *filters.Filter) ([]models.DiskHarvest, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, &DomainError{Domain: "disk", Err: err}
	}

	ioCounters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		g.Logger.Warn().Err(err).Msg("Failed to read disk I/O counters")
		ioCounters = nil
	}

	var harvests []models.DiskHarvest
	for _, part := range partitions {
		if !filter.KeepEntry(part.Mountpoint) || !filter.KeepEntry(part.Device) {
			continue
		}

		h := models.DiskHarvest{
			Device:     part.Device,
			Mountpoint: part.Mountpoint,
			Fstype:     part.Fstype,
		}

		// Usage reads can fail per-mount (permissions, vanished mounts);
		// drop the offending entry and keep the rest of the batch.
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil {
			g.Logger.Warn().Err(err).Str("mount", part.Mountpoint).Msg("Failed to read disk usage")
			continue
		}
		h.TotalBytes = usage.Total
		h.FreeBytes = usage.Free
		h.UsedBytes = usage.Used
		h.UsedPercent = usage.UsedPercent

		if io, ok := ioCounters[filepath.Base(part.Device)]; ok {
			h.TotalRead = io.ReadBytes
			h.TotalWrite = io.WriteBytes
		}

		harvests = append(harvests, h)
	}

	return harvests, nil
}

func (g *GopsutilSource) Temperatures(ctx context.Context, filter *filters.Filter, scale models.TemperatureScale) ([]models.TempSensorData, error) {
	sensors, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(sensors) == 0 {
		return nil, &DomainError{Domain: "temperature", Err: err}
	}

	var readings []models.TempSensorData
	for _, sensor := range sensors {
		if sensor.SensorKey == "" || !filter.KeepEntry(sensor.SensorKey) {
			continue
		}
		readings = append(readings, models.TempSensorData{
			Sensor: sensor.SensorKey,
			Value:  scale.FromCelsius(sensor.Temperature),
			Scale:  scale,
		})
	}

	return readings, nil
}

func (g *GopsutilSource) Processes(ctx context.Context) ([]models.RawProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, &DomainError{Domain: "process", Err: err}
	}

	// Each task writes its own slot so the batch keeps the platform's
	// listing order no matter which read finishes first. Downstream parent
	// mapping depends on that order surviving.
	var (
		wg      sync.WaitGroup
		results = make([]models.RawProcessRecord, len(procs))
		kept    = make([]bool, len(procs))
	)

	for i, proc := range procs {
		wg.Add(1)
		g.WorkerPool.Submit(func() {
			defer wg.Done()
			results[i], kept[i] = g.readProcess(ctx, proc)
		})
	}
	wg.Wait()

	records := make([]models.RawProcessRecord, 0, len(procs))
	for i, keep := range kept {
		if keep {
			records = append(records, results[i])
		}
	}

	return records, nil
}

// readProcess samples one process. Processes can exit mid-read; any record we
// cannot name is dropped and the rest of the batch proceeds.
func (g *GopsutilSource) readProcess(ctx context.Context, proc *process.Process) (models.RawProcessRecord, bool) {
	name, err := proc.NameWithContext(ctx)
	if err != nil || name == "" {
		return models.RawProcessRecord{}, false
	}

	rec := models.RawProcessRecord{
		Pid:        proc.Pid,
		ParentPid:  models.NoParent,
		Name:       name,
		CPUPercent: -1, // no native instantaneous percent; the reconciler diffs CPU time
		UID:        models.NoUID,
	}

	if ppid, err := proc.PpidWithContext(ctx); err == nil && ppid > 0 {
		rec.ParentPid = ppid
	}
	if cmdline, err := proc.CmdlineWithContext(ctx); err == nil && cmdline != "" {
		rec.Cmdline = cmdline
	} else {
		rec.Cmdline = name
	}
	if times, err := proc.TimesWithContext(ctx); err == nil {
		rec.CPUTimeSecs = times.User + times.System
	}
	if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
		rec.MemRSSBytes = memInfo.RSS
	}
	if memPct, err := proc.MemoryPercentWithContext(ctx); err == nil {
		rec.MemPercent = float64(memPct)
	}
	if io, err := proc.IOCountersWithContext(ctx); err == nil && io != nil {
		rec.TotalRead = io.ReadBytes
		rec.TotalWrite = io.WriteBytes
	}
	if uids, err := proc.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		rec.UID = uids[0]
	}
	if status, err := proc.StatusWithContext(ctx); err == nil && len(status) > 0 {
		rec.State = strings.Join(status, "")
	}

	return rec, true
}
