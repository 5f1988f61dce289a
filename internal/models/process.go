package models

// NoParent marks a RawProcessRecord or ProcessHarvest whose parent pid is
// unknown or does not exist.
const NoParent int32 = -1

// NoUID marks a record whose owning user could not be determined.
const NoUID int32 = -1

// RawProcessRecord is a single process sample exactly as the platform
// reported it. Records live for one poll cycle only; the previous cycle's
// normalized harvest is what deltas are computed against.
type RawProcessRecord struct {
	Pid       int32
	ParentPid int32

	Name    string
	Cmdline string

	// CPUPercent is a platform-native instantaneous percentage, or a
	// negative value when the platform only exposes cumulative CPU time.
	CPUPercent float64

	// CPUTimeSecs is cumulative user+system CPU time since process start.
	CPUTimeSecs float64

	MemRSSBytes uint64
	MemPercent  float64

	// Cumulative I/O byte counters.
	TotalRead  uint64
	TotalWrite uint64

	UID   int32
	State string
}

// ProcessHarvest is the normalized, display-ready form of one process. The
// cumulative counters ride along so the next cycle can compute rates from
// this snapshot alone.
type ProcessHarvest struct {
	Pid       int32
	ParentPid int32

	Name    string
	Command string
	User    string
	State   string

	CPUUsagePercent float64
	CPUTimeSecs     float64

	MemUsageBytes   uint64
	MemUsagePercent float64

	ReadBytesPerSec  float64
	WriteBytesPerSec float64
	TotalRead        uint64
	TotalWrite       uint64

	// MergedPids lists every pid folded into this entry when same-name
	// merging is active. Empty for ordinary entries.
	MergedPids []int32
}

// PidCounters are cumulative per-pid counters kept for next-cycle delta
// computation. They are recorded per pid even when same-name merging reshapes
// the harvest map, so rates stay correct across mode toggles.
type PidCounters struct {
	CPUTimeSecs float64
	TotalRead   uint64
	TotalWrite  uint64
}

// ProcessData is the reconciled process snapshot for one cycle. It is rebuilt
// wholesale every cycle and never mutated afterwards; the scheduler swaps a
// fresh one in while the UI keeps reading the old one.
type ProcessData struct {
	// Harvest maps pid to its normalized entry.
	Harvest map[int32]*ProcessHarvest

	// ParentMapping maps a pid to its children, preserving the platform's
	// original listing order of siblings.
	ParentMapping map[int32][]int32

	// OrphanPids holds pids with no resolvable parent this cycle: true
	// roots, and children whose parent exited or was filtered out.
	OrphanPids []int32

	// Counters holds the cumulative per-pid counters this cycle's rates
	// were derived from; the next cycle diffs against them.
	Counters map[int32]PidCounters
}

// Clone deep-copies the process snapshot.
func (p *ProcessData) Clone() *ProcessData {
	if p == nil {
		return nil
	}

	out := &ProcessData{
		Harvest:       make(map[int32]*ProcessHarvest, len(p.Harvest)),
		ParentMapping: make(map[int32][]int32, len(p.ParentMapping)),
		OrphanPids:    append([]int32(nil), p.OrphanPids...),
		Counters:      make(map[int32]PidCounters, len(p.Counters)),
	}
	for pid, c := range p.Counters {
		out.Counters[pid] = c
	}
	for pid, h := range p.Harvest {
		c := *h
		c.MergedPids = append([]int32(nil), h.MergedPids...)
		out.Harvest[pid] = &c
	}
	for pid, children := range p.ParentMapping {
		out.ParentMapping[pid] = append([]int32(nil), children...)
	}

	return out
}
