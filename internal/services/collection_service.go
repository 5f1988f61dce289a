// Package services hosts the long-running pieces: the collection scheduler
// that drives the sampling loop, and the process kill capability.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/termstat/termstat/internal/collect"
	"github.com/termstat/termstat/internal/filters"
	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/timeseries"
)

// CollectionService drives the poll-collect-reconcile-append-publish cycle on
// a single background goroutine. The UI never touches in-progress collection
// state; it only reads the latest published snapshot handle.
type CollectionService struct {
	interval time.Duration
	mask     models.DomainMask
	filters  *filters.Set

	collector *collect.Collector
	store     *timeseries.Store
	logger    zerolog.Logger

	// latest is the publish slot: a pointer swap is the whole critical
	// section of the hand-off.
	latest  atomic.Pointer[models.Data]
	updates chan struct{}

	// frozen holds an exclusively-owned deep copy taken at toggle time.
	// Collection keeps running while frozen so deltas stay fresh on thaw.
	frozenMu sync.Mutex
	frozen   *models.Data

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCollectionService wires the scheduler to its collaborators.
func NewCollectionService(
	interval time.Duration,
	mask models.DomainMask,
	flt *filters.Set,
	collector *collect.Collector,
	store *timeseries.Store,
	logger zerolog.Logger,
) *CollectionService {
	return &CollectionService{
		interval:  interval,
		mask:      mask,
		filters:   flt,
		collector: collector,
		store:     store,
		logger:    logger.With().Str("session_id", uuid.New().String()).Logger(),
		updates:   make(chan struct{}, 1),
	}
}

// Start launches the collection loop. The first cycle runs immediately so the
// UI has a snapshot before the first full interval elapses.
func (s *CollectionService) Start() error {
	if s.ctx != nil {
		s.logger.Warn().Msg("CollectionService is already running")
		return errors.New("collection service is already running")
	}

	s.logger.Info().Dur("interval", s.interval).Msg("Starting CollectionService...")

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wg.Add(1)
	go s.runCollectionLoop()

	return nil
}

func (s *CollectionService) runCollectionLoop() {
	defer s.wg.Done()

	s.runCycle()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCycle()
		case <-s.ctx.Done():
			s.logger.Info().Msg("Stopping collection loop")
			return
		}
	}
}

// runCycle performs one collection cycle. Failures keep the previous snapshot
// current and never stop the loop.
func (s *CollectionService) runCycle() {
	prev := s.latest.Load()

	var elapsed time.Duration
	if prev != nil {
		elapsed = time.Since(prev.CollectedAt)
	}

	data, err := s.collector.Collect(s.ctx, prev, elapsed, s.mask, s.filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("Collection cycle failed; keeping previous snapshot")
		return
	}

	s.appendSeries(data)
	s.latest.Store(data)

	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// appendSeries feeds the cycle's scalar metrics into the time series store.
func (s *CollectionService) appendSeries(data *models.Data) {
	t := data.CollectedAt

	if data.CPU != nil {
		s.store.Append(timeseries.KeyCPUAvg, t, data.CPU.Avg)
		for i, usage := range data.CPU.Usage {
			s.store.Append(fmt.Sprintf("%s%d", timeseries.KeyCPUCore, i), t, usage)
		}
	}
	if data.Memory != nil {
		s.store.Append(timeseries.KeyRAM, t, data.Memory.UsedPercent)
		s.store.Append(timeseries.KeySwap, t, data.Memory.SwapUsedPercent)
		if data.Memory.TotalBytes > 0 {
			cache := float64(data.Memory.CachedBytes) / float64(data.Memory.TotalBytes) * 100
			s.store.Append(timeseries.KeyCache, t, cache)
		}
	}
	if data.Network != nil {
		s.store.Append(timeseries.KeyNetRx, t, data.Network.RxBytesPerSec)
		s.store.Append(timeseries.KeyNetTx, t, data.Network.TxBytesPerSec)
	}
}

// Latest returns the most recently published live snapshot, or nil before the
// first cycle completes.
func (s *CollectionService) Latest() *models.Data {
	return s.latest.Load()
}

// Display returns what the UI should render: the frozen copy while frozen,
// the latest live snapshot otherwise.
func (s *CollectionService) Display() *models.Data {
	s.frozenMu.Lock()
	defer s.frozenMu.Unlock()
	if s.frozen != nil {
		return s.frozen
	}
	return s.latest.Load()
}

// ToggleFreeze flips the freeze state and reports whether the display is now
// frozen. Freezing takes a deep copy, so later live cycles cannot leak into a
// frozen handle.
func (s *CollectionService) ToggleFreeze() bool {
	s.frozenMu.Lock()
	defer s.frozenMu.Unlock()

	if s.frozen != nil {
		s.frozen = nil
		return false
	}
	s.frozen = s.latest.Load().Clone()
	return s.frozen != nil
}

// IsFrozen reports whether the display is frozen.
func (s *CollectionService) IsFrozen() bool {
	s.frozenMu.Lock()
	defer s.frozenMu.Unlock()
	return s.frozen != nil
}

// Updates signals each published snapshot. The channel is never closed and
// drops signals rather than blocking the collection loop.
func (s *CollectionService) Updates() <-chan struct{} {
	return s.updates
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (s *CollectionService) Stop() error {
	if s.ctx == nil {
		s.logger.Warn().Msg("CollectionService is not running")
		return errors.New("collection service is not running")
	}

	s.logger.Info().Msg("Stopping CollectionService...")
	s.cancel()
	s.wg.Wait()
	s.logger.Info().Msg("CollectionService stopped successfully")
	return nil
}
