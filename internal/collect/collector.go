package collect

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/harvesters"
	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/utils"
)

// ErrAllDomainsFailed is returned when not a single enabled domain produced
// data this cycle. Partial failure is not an error; the cycle simply carries
// stale or absent harvests for the failed domains.
var ErrAllDomainsFailed = errors.New("every enabled metric domain failed to collect")

// Options fixes the collection-time configuration. Immutable after startup.
type Options struct {
	Normalization    models.CPUNormalization
	TemperatureScale models.TemperatureScale
	TreeGrouping     bool
	MergeSameName    bool
}

// Collector assembles one normalized Data snapshot per cycle from the
// platform metric source. It holds no cross-cycle state of its own: all
// previous counters travel inside the previous snapshot, and the uid cache is
// owned by the caller's collection context.
type Collector struct {
	source harvesters.MetricSource
	users  *UserTable
	logger zerolog.Logger
	opts   Options
}

// NewCollector wires a collector to its metric source.
func NewCollector(source harvesters.MetricSource, users *UserTable, logger zerolog.Logger, opts Options) *Collector {
	return &Collector{
		source: source,
		users:  users,
		logger: logger,
		opts:   opts,
	}
}

// Collect runs one collection cycle. prev is the previous snapshot or nil on
// the first run; elapsed is the wall-clock time since prev was collected.
// Rate-based fields are explicitly zero on the first cycle, on a zero
// elapsed, and on counter resets.
//
// A failing domain is logged and degrades to the previous cycle's harvest;
// only a cycle where every enabled domain fails returns an error.
func (c *Collector) Collect(ctx context.Context, prev *models.Data, elapsed time.Duration, mask models.DomainMask, flt *filters.Set) (*models.Data, error) {
	data := &models.Data{
		CollectedAt: time.Now(),
		Elapsed:     elapsed,
	}

	var attempted, failed int

	if mask.Has(models.DomainCPU) {
		attempted++
		if cpu, err := c.source.CPU(ctx); err != nil {
			failed++
			c.degrade("cpu", err)
			if prev != nil {
				data.CPU = prev.CPU
			}
		} else {
			c.deriveCPUUsage(cpu, prev)
			data.CPU = cpu
		}
	}

	if mask.Has(models.DomainMemory) {
		attempted++
		if memory, err := c.source.Memory(ctx); err != nil {
			failed++
			c.degrade("memory", err)
			if prev != nil {
				data.Memory = prev.Memory
			}
		} else {
			data.Memory = memory
		}
	}

	if mask.Has(models.DomainNetwork) {
		attempted++
		if network, err := c.source.Network(ctx, flt.Network); err != nil {
			failed++
			c.degrade("network", err)
			if prev != nil {
				data.Network = prev.Network
			}
		} else {
			if prev != nil && prev.Network != nil {
				secs := elapsed.Seconds()
				network.RxBytesPerSec = utils.ClampRate(network.TotalRx, prev.Network.TotalRx, secs)
				network.TxBytesPerSec = utils.ClampRate(network.TotalTx, prev.Network.TotalTx, secs)
			}
			data.Network = network
		}
	}

	if mask.Has(models.DomainDisk) {
		attempted++
		if disks, err := c.source.Disks(ctx, flt.Disk); err != nil {
			failed++
			c.degrade("disk", err)
			if prev != nil {
				data.Disks = prev.Disks
			}
		} else {
			c.deriveDiskRates(disks, prev, elapsed)
			data.Disks = disks
		}
	}

	if mask.Has(models.DomainTemperature) {
		attempted++
		if temps, err := c.source.Temperatures(ctx, flt.Temperature, c.opts.TemperatureScale); err != nil {
			failed++
			c.degrade("temperature", err)
			if prev != nil {
				data.Temps = prev.Temps
			}
		} else {
			data.Temps = temps
		}
	}

	if mask.Has(models.DomainBattery) {
		attempted++
		if batteries, err := c.source.Batteries(ctx); err != nil {
			failed++
			c.degrade("battery", err)
			if prev != nil {
				data.Batteries = prev.Batteries
			}
		} else {
			data.Batteries = batteries
		}
	}

	if mask.Has(models.DomainProcess) {
		attempted++
		if raw, err := c.source.Processes(ctx); err != nil {
			failed++
			c.degrade("process", err)
			if prev != nil {
				data.Processes = prev.Processes
			}
		} else {
			kept := raw[:0]
			for _, rec := range raw {
				if flt.Process.KeepEntry(rec.Name) {
					kept = append(kept, rec)
				}
			}

			var prevProcs *models.ProcessData
			if prev != nil {
				prevProcs = prev.Processes
			}
			data.Processes = Reconcile(kept, prevProcs, c.users, ReconcileOptions{
				Elapsed:       elapsed,
				CoreCount:     runtime.NumCPU(),
				Normalization: c.opts.Normalization,
				TreeGrouping:  c.opts.TreeGrouping,
				MergeSameName: c.opts.MergeSameName,
			})
		}
	}

	if attempted > 0 && failed == attempted {
		return data, ErrAllDomainsFailed
	}
	return data, nil
}

// deriveCPUUsage fills per-core busy percentages from the delta of cumulative
// core times against the previous snapshot. The first cycle has nothing to
// diff against and stays at zero.
func (c *Collector) deriveCPUUsage(cpu *models.CPUHarvest, prev *models.Data) {
	if len(cpu.Usage) != len(cpu.Cores) {
		cpu.Usage = make([]float64, len(cpu.Cores))
	}
	if prev == nil || prev.CPU == nil {
		return
	}

	prevCores := prev.CPU.Cores
	var sum float64
	for i, cur := range cpu.Cores {
		if i >= len(prevCores) {
			break
		}
		dt := cur.TotalSecs - prevCores[i].TotalSecs
		db := cur.BusySecs - prevCores[i].BusySecs
		if dt > 0 && db > 0 {
			cpu.Usage[i] = db / dt * 100
		}
		sum += cpu.Usage[i]
	}
	if len(cpu.Usage) > 0 {
		cpu.Avg = sum / float64(len(cpu.Usage))
	}
}

// deriveDiskRates matches disks to the previous snapshot by device name and
// computes read/write throughput.
func (c *Collector) deriveDiskRates(disks []models.DiskHarvest, prev *models.Data, elapsed time.Duration) {
	if prev == nil || len(prev.Disks) == 0 {
		return
	}

	prevByDevice := make(map[string]models.DiskHarvest, len(prev.Disks))
	for _, d := range prev.Disks {
		prevByDevice[d.Device] = d
	}

	secs := elapsed.Seconds()
	for i := range disks {
		if prevDisk, ok := prevByDevice[disks[i].Device]; ok {
			disks[i].ReadBytesPerSec = utils.ClampRate(disks[i].TotalRead, prevDisk.TotalRead, secs)
			disks[i].WriteBytesPerSec = utils.ClampRate(disks[i].TotalWrite, prevDisk.TotalWrite, secs)
		}
	}
}

// degrade logs a per-domain failure at the right severity. Unsupported
// domains are expected on some platforms and stay quiet after startup noise.
func (c *Collector) degrade(domain string, err error) {
	if errors.Is(err, harvesters.ErrUnsupported) {
		c.logger.Debug().Str("domain", domain).Msg("Metric domain unsupported on this platform")
		return
	}
	c.logger.Warn().Err(err).Str("domain", domain).Msg("Metric domain failed to collect; carrying previous data")
}
