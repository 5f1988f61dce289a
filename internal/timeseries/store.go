// Package timeseries holds the bounded-retention history that backs the
// dashboard graphs.
package timeseries

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Standard series keys written by the collection scheduler. Per-core CPU
// series use KeyCPUCore.
const (
	KeyCPUAvg  = "cpu.avg"
	KeyRAM     = "mem.ram"
	KeySwap    = "mem.swap"
	KeyCache   = "mem.cache"
	KeyNetRx   = "net.rx"
	KeyNetTx   = "net.tx"
	KeyCPUCore = "cpu."
)

// Point is one (timestamp, value) sample.
type Point struct {
	Time  time.Time
	Value float64
}

// Store keeps one append-only, retention-bounded series per metric key.
//
// The scheduler's collection goroutine is the only appender; the UI reads
// snapshots concurrently. The series map is a concurrent map so lookups never
// block the appender, and each series carries its own mutex so a snapshot
// never observes a half-finished evict+append.
type Store struct {
	retention time.Duration
	series    cmap.ConcurrentMap[string, *series]
}

type series struct {
	mu     sync.Mutex
	points []Point
}

// NewStore creates a store that retains samples for the given window.
func NewStore(retention time.Duration) *Store {
	return &Store{
		retention: retention,
		series:    cmap.New[*series](),
	}
}

// Append records a sample and lazily evicts entries that have aged out of the
// retention window. Timestamps must be strictly increasing per series;
// non-increasing appends are dropped to preserve that invariant.
func (s *Store) Append(key string, t time.Time, value float64) {
	sr, ok := s.series.Get(key)
	if !ok {
		sr = &series{}
		s.series.SetIfAbsent(key, sr)
		sr, _ = s.series.Get(key)
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()

	if n := len(sr.points); n > 0 && !sr.points[n-1].Time.Before(t) {
		return
	}

	// Entries are time-ordered, so one forward sweep from the oldest entry
	// finds everything stale.
	cutoff := t.Add(-s.retention)
	evict := 0
	for evict < len(sr.points) && sr.points[evict].Time.Before(cutoff) {
		evict++
	}
	if evict > 0 {
		remaining := len(sr.points) - evict
		copy(sr.points, sr.points[evict:])
		sr.points = sr.points[:remaining]
	}

	sr.points = append(sr.points, Point{Time: t, Value: value})
}

// Snapshot returns a copy of the series for the given key, oldest first. The
// copy is independent of later appends.
func (s *Store) Snapshot(key string) []Point {
	sr, ok := s.series.Get(key)
	if !ok {
		return nil
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()
	return append([]Point(nil), sr.points...)
}

// Len returns the number of retained points for the given key.
func (s *Store) Len(key string) int {
	sr, ok := s.series.Get(key)
	if !ok {
		return 0
	}

	sr.mu.Lock()
	defer sr.mu.Unlock()
	return len(sr.points)
}

// Keys lists every series currently present.
func (s *Store) Keys() []string {
	return s.series.Keys()
}
