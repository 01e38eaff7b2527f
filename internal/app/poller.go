package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
	"github.com/yourusername/bookqueue-go/pkg/logger"
)

// Poller drives the reconciliation loop: one snapshot read per interval,
// handed to the reconciler and then the notification engine. Polls are
// sequential by construction, a new read only starts after the previous
// one resolved. A failed read leaves all existing job state untouched.
type Poller struct {
	source     domain.SnapshotSource
	reconciler *Reconciler
	notifier   *NotificationEngine
	interval   time.Duration
	multiLog   *logger.MultiLogger
	log        *zap.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	workerWg sync.WaitGroup
}

// NewPoller creates a poller. multiLog may be nil.
func NewPoller(
	source domain.SnapshotSource,
	reconciler *Reconciler,
	notifier *NotificationEngine,
	interval time.Duration,
	multiLog *logger.MultiLogger,
	log *zap.Logger,
) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		source:     source,
		reconciler: reconciler,
		notifier:   notifier,
		interval:   interval,
		multiLog:   multiLog,
		log:        log,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the poll loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	if p.multiLog != nil {
		p.multiLog.LogPollEvent("poller_started",
			zap.Duration("interval", p.interval))
	}

	p.workerWg.Add(1)
	go p.pollLoop(ctx)

	return nil
}

// Stop stops the poll loop and waits for it to exit.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller not running")
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.workerWg.Wait()

	if p.multiLog != nil {
		p.multiLog.LogPollEvent("poller_stopped")
	}
	return nil
}

// IsRunning returns whether the poll loop is active.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) pollLoop(ctx context.Context) {
	defer p.workerWg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Prime immediately so the first view doesn't wait a full interval.
	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce performs a single read-reconcile-notify cycle. Reconciliation
// runs to completion before the notification engine sees the snapshot, so
// notifications are always computed against fully reconciled state. A
// result that arrives after cancellation is discarded.
func (p *Poller) PollOnce(ctx context.Context) {
	start := time.Now()
	snapshot, err := p.source.GetStatus(ctx)
	if err != nil {
		if p.multiLog != nil {
			p.multiLog.LogAppError("Snapshot poll failed", zap.Error(err))
		}
		p.log.Warn("Snapshot poll failed, keeping previous state", zap.Error(err))
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-p.stopChan:
		return
	default:
	}

	p.reconciler.Apply(snapshot)
	p.notifier.Observe(snapshot)

	if p.multiLog != nil {
		jobs := 0
		for _, category := range domain.Categories() {
			jobs += len(snapshot.Jobs(category))
		}
		p.multiLog.LogPollEvent("poll_completed",
			zap.Int("jobs", jobs),
			zap.Duration("latency", time.Since(start)))
	}
}
