package collect

import (
	"sort"
	"time"

	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/utils"
)

// ReconcileOptions controls process normalization for one cycle.
type ReconcileOptions struct {
	Elapsed       time.Duration
	CoreCount     int
	Normalization models.CPUNormalization

	// MergeSameName coalesces processes sharing a display name into one
	// synthetic entry. Only honored while TreeGrouping is off, since the
	// merge changes the data shape the tree depends on.
	TreeGrouping  bool
	MergeSameName bool
}

// Reconcile converts the flat raw process list into the parent/child/orphan
// linked snapshot, computing per-process CPU and I/O rates against the
// previous cycle. The result is freshly built every cycle; prev is read-only.
func Reconcile(raw []models.RawProcessRecord, prev *models.ProcessData, users *UserTable, opts ReconcileOptions) *models.ProcessData {
	out := &models.ProcessData{
		Harvest:       make(map[int32]*models.ProcessHarvest, len(raw)),
		ParentMapping: make(map[int32][]int32),
		Counters:      make(map[int32]models.PidCounters, len(raw)),
	}

	elapsedSecs := opts.Elapsed.Seconds()

	for _, rec := range raw {
		h := &models.ProcessHarvest{
			Pid:             rec.Pid,
			ParentPid:       rec.ParentPid,
			Name:            rec.Name,
			Command:         rec.Cmdline,
			User:            users.Lookup(rec.UID),
			State:           rec.State,
			CPUTimeSecs:     rec.CPUTimeSecs,
			MemUsageBytes:   rec.MemRSSBytes,
			MemUsagePercent: rec.MemPercent,
			TotalRead:       rec.TotalRead,
			TotalWrite:      rec.TotalWrite,
		}

		var (
			prevCounters models.PidCounters
			seenBefore   bool
		)
		if prev != nil {
			prevCounters, seenBefore = prev.Counters[rec.Pid]
		}

		h.CPUUsagePercent = cpuUsagePercent(rec, prevCounters, seenBefore, elapsedSecs, opts)
		if seenBefore {
			h.ReadBytesPerSec = utils.ClampRate(rec.TotalRead, prevCounters.TotalRead, elapsedSecs)
			h.WriteBytesPerSec = utils.ClampRate(rec.TotalWrite, prevCounters.TotalWrite, elapsedSecs)
		}

		out.Harvest[rec.Pid] = h
		out.Counters[rec.Pid] = models.PidCounters{
			CPUTimeSecs: rec.CPUTimeSecs,
			TotalRead:   rec.TotalRead,
			TotalWrite:  rec.TotalWrite,
		}
	}

	// Reverse input order so that a later forward scan of each child list
	// yields siblings in the platform's original listing order.
	for i := len(raw) - 1; i >= 0; i-- {
		rec := raw[i]
		if rec.ParentPid != models.NoParent {
			out.ParentMapping[rec.ParentPid] = append(out.ParentMapping[rec.ParentPid], rec.Pid)
		}
	}

	// A pid is an orphan if it has no parent pid, or its parent is not in
	// this cycle's harvest. Parents that vanish mid-session promote their
	// children.
	for pid, h := range out.Harvest {
		if h.ParentPid == models.NoParent {
			out.OrphanPids = append(out.OrphanPids, pid)
			continue
		}
		if _, ok := out.Harvest[h.ParentPid]; !ok {
			out.OrphanPids = append(out.OrphanPids, pid)
		}
	}
	sort.Slice(out.OrphanPids, func(i, j int) bool { return out.OrphanPids[i] < out.OrphanPids[j] })

	if !opts.TreeGrouping && opts.MergeSameName {
		mergeSameName(out, raw)
	}

	return out
}

func cpuUsagePercent(rec models.RawProcessRecord, prevCounters models.PidCounters, seenBefore bool, elapsedSecs float64, opts ReconcileOptions) float64 {
	var pct float64

	switch {
	case rec.CPUPercent >= 0:
		// Platform-native instantaneous percentage.
		pct = rec.CPUPercent
	case !seenBefore || elapsedSecs <= 0:
		// A pid absent from the previous cycle cannot be diffed.
		return 0
	default:
		delta := rec.CPUTimeSecs - prevCounters.CPUTimeSecs
		if delta < 0 {
			return 0
		}
		pct = delta / elapsedSecs * 100
	}

	if opts.Normalization == models.NormalizeTotal && opts.CoreCount > 0 {
		pct /= float64(opts.CoreCount)
	}
	return pct
}

// mergeSameName replaces the per-pid entries with one synthetic entry per
// display name, summing usage and concatenating pid lists. Parent links do
// not survive the merge: the merged view is flat, every synthetic entry is a
// root.
func mergeSameName(data *models.ProcessData, raw []models.RawProcessRecord) {
	merged := make(map[string]*models.ProcessHarvest)
	var order []string

	for _, rec := range raw {
		h, ok := data.Harvest[rec.Pid]
		if !ok {
			continue
		}

		entry, ok := merged[h.Name]
		if !ok {
			rep := *h
			rep.ParentPid = models.NoParent
			rep.MergedPids = []int32{h.Pid}
			merged[h.Name] = &rep
			order = append(order, h.Name)
			continue
		}

		entry.MergedPids = append(entry.MergedPids, h.Pid)
		entry.CPUUsagePercent += h.CPUUsagePercent
		entry.CPUTimeSecs += h.CPUTimeSecs
		entry.MemUsageBytes += h.MemUsageBytes
		entry.MemUsagePercent += h.MemUsagePercent
		entry.ReadBytesPerSec += h.ReadBytesPerSec
		entry.WriteBytesPerSec += h.WriteBytesPerSec
		entry.TotalRead += h.TotalRead
		entry.TotalWrite += h.TotalWrite
	}

	data.Harvest = make(map[int32]*models.ProcessHarvest, len(merged))
	data.ParentMapping = make(map[int32][]int32)
	data.OrphanPids = data.OrphanPids[:0]

	for _, name := range order {
		entry := merged[name]
		data.Harvest[entry.Pid] = entry
		data.OrphanPids = append(data.OrphanPids, entry.Pid)
	}
	sort.Slice(data.OrphanPids, func(i, j int) bool { return data.OrphanPids[i] < data.OrphanPids[j] })
}
