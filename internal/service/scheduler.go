package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"bgg-mirror-api/internal/config"
	"bgg-mirror-api/internal/model"
)

// syncRunTimeout bounds one scheduled run. Collection syncs crawl the thing
// endpoint at a low request rate, so runs are allowed to take a while.
const syncRunTimeout = 2 * time.Hour

// startupDelay postpones the first scheduled run so the HTTP server comes up
// before the upstream crawl begins.
var startupDelay = 10 * time.Second

// SyncScheduler drives the orchestrator on a fixed interval per kind. Each
// kind runs on its own ticker; a tick that fires while the previous run for
// that kind is still active is dropped, not queued.
type SyncScheduler struct {
	orchestrator *SyncOrchestrator
	intervals    map[model.Kind]time.Duration

	baseCtx   context.Context
	cancel    context.CancelFunc
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex
}

// NewSyncScheduler creates a scheduler with the configured per-kind
// intervals. Kinds with a zero interval are not scheduled. The hot game and
// hot person lists share the hotness interval.
func NewSyncScheduler(orchestrator *SyncOrchestrator, cfg config.SyncConfig) *SyncScheduler {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &SyncScheduler{
		orchestrator: orchestrator,
		intervals: map[model.Kind]time.Duration{
			model.KindGame:      cfg.GamesInterval,
			model.KindAccessory: cfg.AccessoriesInterval,
			model.KindHotGame:   cfg.HotnessInterval,
			model.KindHotPerson: cfg.HotnessInterval,
			model.KindPlay:      cfg.PlaysInterval,
		},
		baseCtx: baseCtx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
}

// Start launches one sync loop per scheduled kind and triggers an initial
// run shortly after startup.
func (s *SyncScheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	for _, kind := range model.AllKinds {
		interval := s.intervals[kind]
		if interval <= 0 {
			log.Printf("[SyncScheduler] %s disabled (no interval)", kind)
			continue
		}
		log.Printf("[SyncScheduler] %s scheduled every %v", kind, interval)

		s.wg.Add(1)
		go s.run(kind, interval)
	}
}

// run is the loop for one kind.
func (s *SyncScheduler) run(kind model.Kind, interval time.Duration) {
	defer s.wg.Done()

	startup := time.NewTimer(startupDelay)
	defer startup.Stop()
	select {
	case <-startup.C:
		s.runSync(kind)
	case <-s.stopCh:
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runSync(kind)
		case <-s.stopCh:
			return
		}
	}
}

// runSync performs one scheduled run for the kind.
func (s *SyncScheduler) runSync(kind model.Kind) {
	ctx, cancel := context.WithTimeout(s.baseCtx, syncRunTimeout)
	defer cancel()

	if _, err := s.orchestrator.TrySync(ctx, kind); err != nil {
		if errors.Is(err, ErrSyncRunning) {
			log.Printf("[SyncScheduler] Skipping %s tick, previous run still active", kind)
			return
		}
		log.Printf("[SyncScheduler] Scheduled %s sync failed: %v", kind, err)
	}
}

// Stop cancels any run in flight, stops all sync loops and waits for them
// to exit.
func (s *SyncScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		close(s.stopCh)
		s.wg.Wait()

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		log.Printf("[SyncScheduler] Stopped")
	})
}
