package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
	"github.com/yourusername/bookqueue-go/pkg/logger"
)

// Transition is a job's first appearance in a watched category relative
// to the previous snapshot.
type Transition struct {
	JobID string
	Kind  domain.NotificationKind
}

// DiffSnapshots computes the watched transitions between two consecutive
// snapshots. The comparator is the only place the polling model leaks in;
// a real event stream could replace it without touching the transition
// rules.
//
// Rules:
//   - started: present in downloading now, absent previously
//   - completed: present in available or done now, previously in neither
//     (a job mirrored into both buckets yields one transition)
//   - failed: present in error now, absent previously
func DiffSnapshots(prev, curr domain.Snapshot) []Transition {
	var out []Transition

	for id := range curr.Jobs(domain.CategoryDownloading) {
		if !prev.Has(domain.CategoryDownloading, id) {
			out = append(out, Transition{JobID: id, Kind: domain.NotificationStarted})
		}
	}

	seen := make(map[string]struct{})
	for _, category := range []domain.Category{domain.CategoryAvailable, domain.CategoryDone} {
		for id := range curr.Jobs(category) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if !prev.Has(domain.CategoryAvailable, id) && !prev.Has(domain.CategoryDone, id) {
				out = append(out, Transition{JobID: id, Kind: domain.NotificationCompleted})
			}
		}
	}

	for id := range curr.Jobs(domain.CategoryError) {
		if !prev.Has(domain.CategoryError, id) {
			out = append(out, Transition{JobID: id, Kind: domain.NotificationFailed})
		}
	}

	return out
}

// Announcer mirrors a notification to an external channel, e.g. a desktop
// notification daemon.
type Announcer interface {
	Announce(rec *domain.NotificationRecord)
}

// NotificationEngine retains the previous snapshot and synthesizes at most
// one notification per job per transition. It also owns the ticking clock
// that expires visible notifications.
type NotificationEngine struct {
	store     *Store
	announcer Announcer
	multiLog  *logger.MultiLogger
	log       *zap.Logger
	tick      time.Duration

	mu          sync.Mutex
	prev        domain.Snapshot
	hasBaseline bool
}

// NewNotificationEngine creates an engine. announcer and multiLog may be nil.
func NewNotificationEngine(
	store *Store,
	announcer Announcer,
	tick time.Duration,
	multiLog *logger.MultiLogger,
	log *zap.Logger,
) *NotificationEngine {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return &NotificationEngine{
		store:     store,
		announcer: announcer,
		multiLog:  multiLog,
		log:       log,
		tick:      tick,
	}
}

// Observe diffs the incoming snapshot against the previous one and emits
// the resulting notifications. The first snapshot only records the
// baseline: a cold start must not replay historic transitions at the user.
// Callers run reconciliation first, so cover and title fallbacks read a
// fully reconciled store.
func (e *NotificationEngine) Observe(snapshot domain.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasBaseline {
		e.prev = snapshot
		e.hasBaseline = true
		return
	}

	for _, tr := range DiffSnapshots(e.prev, snapshot) {
		rec := e.buildRecord(tr, snapshot)
		e.store.PushNotification(rec)

		if e.announcer != nil {
			e.announcer.Announce(rec)
		}
		if e.multiLog != nil {
			e.multiLog.LogPollEvent("notification_emitted",
				zap.String("job_id", rec.JobID),
				zap.String("kind", string(rec.Kind)),
				zap.String("title", rec.Title))
		}
	}

	e.prev = snapshot
}

// buildRecord resolves display fields from the snapshot, falling back to
// the store's live state when the snapshot omits them.
func (e *NotificationEngine) buildRecord(tr Transition, snapshot domain.Snapshot) *domain.NotificationRecord {
	title := ""
	cover := ""
	if raw, ok := snapshot.Lookup(tr.JobID); ok {
		title = raw.Title
		cover = raw.Preview
	}
	if title == "" || cover == "" {
		if state, ok := e.store.Get(tr.JobID); ok {
			if title == "" {
				title = state.Title
			}
			if cover == "" {
				cover = state.CoverURL
			}
		}
	}

	return &domain.NotificationRecord{
		ID:         uuid.New().String(),
		Kind:       tr.Kind,
		JobID:      tr.JobID,
		Title:      title,
		CoverURL:   cover,
		CreatedAt:  time.Now(),
		DurationMs: tr.Kind.DisplayDuration().Milliseconds(),
	}
}

// Run drives the expiry clock until the context is cancelled. Expiry is
// pure local bookkeeping and never touches live job state.
func (e *NotificationEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.store.ExpireNotifications(now)
		}
	}
}
