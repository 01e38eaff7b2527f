package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

const recentLimit = 20

// Store holds the reconciled live view of every known job plus the two
// capped append-only logs: terminal history and notifications. It is the
// single source of truth; only the reconciler and explicit user-initiated
// calls mutate live state, and the notification engine touches only the
// notification log.
type Store struct {
	repo   domain.StateRepository
	logger *zap.Logger

	historyLimit      int
	notificationLimit int
	visibleLimit      int

	mu            sync.RWMutex
	downloads     map[string]*domain.LiveJobState
	history       []*domain.HistoryRecord // newest first
	historySeen   map[string]struct{}
	notifications []*domain.NotificationRecord // retained log, newest first
	visible       []*domain.NotificationRecord // currently displayed, newest first
	dismissed     map[string]struct{}
}

// NewStore creates a store and restores the durable slices (history and
// the notification log) from the repository. repo may be nil for a
// memory-only store.
func NewStore(cfg *domain.QueueConfig, repo domain.StateRepository, logger *zap.Logger) *Store {
	s := &Store{
		repo:              repo,
		logger:            logger,
		historyLimit:      cfg.HistoryLimit,
		notificationLimit: cfg.NotificationLimit,
		visibleLimit:      cfg.VisibleLimit,
		downloads:         make(map[string]*domain.LiveJobState),
		historySeen:       make(map[string]struct{}),
		dismissed:         make(map[string]struct{}),
	}
	if s.historyLimit <= 0 {
		s.historyLimit = 100
	}
	if s.notificationLimit <= 0 {
		s.notificationLimit = 50
	}
	if s.visibleLimit <= 0 {
		s.visibleLimit = 10
	}

	if repo != nil {
		if history, err := repo.LoadHistory(s.historyLimit); err != nil {
			logger.Warn("Failed to restore history", zap.Error(err))
		} else {
			s.history = history
			for _, rec := range history {
				s.historySeen[rec.JobID] = struct{}{}
			}
		}
		if notifications, err := repo.LoadNotifications(s.notificationLimit); err != nil {
			logger.Warn("Failed to restore notification log", zap.Error(err))
		} else {
			s.notifications = notifications
		}
	}

	return s
}

// Upsert fully replaces the live state for a job, creating it on first
// sighting. Applying the same state twice is a no-op: the terminal
// timestamp is stamped once and the history append is guarded per job id.
func (s *Store) Upsert(state domain.LiveJobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(state)
}

// Patch mutates an existing job in place, or creates it when mutate fills
// in a fresh state. Used by the command service for optimistic updates.
func (s *Store) Patch(id string, mutate func(*domain.LiveJobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.LiveJobState{ID: id}
	if existing, ok := s.downloads[id]; ok {
		state = *existing
	}
	mutate(&state)
	state.ID = id
	s.applyLocked(state)
}

// applyLocked is the single mutation funnel for live state. Caller holds mu.
func (s *Store) applyLocked(state domain.LiveJobState) {
	if state.ID == "" {
		return
	}

	if state.Status.IsTerminal() {
		if existing, ok := s.downloads[state.ID]; ok &&
			existing.Status == state.Status && state.Timestamp == "" {
			state.Timestamp = existing.Timestamp
		}
		if state.Timestamp == "" {
			state.Timestamp = time.Now().UTC().Format(time.RFC3339)
		}
	}

	s.downloads[state.ID] = &state

	if state.Status.IsTerminal() {
		s.recordHistoryLocked(&state)
	}
}

// recordHistoryLocked appends a terminal record at most once per job id.
func (s *Store) recordHistoryLocked(state *domain.LiveJobState) {
	if _, seen := s.historySeen[state.ID]; seen {
		return
	}
	s.historySeen[state.ID] = struct{}{}

	rec := domain.NewHistoryRecord(state)
	s.history = append([]*domain.HistoryRecord{rec}, s.history...)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}

	if s.repo != nil {
		if err := s.repo.SaveHistory(rec); err != nil {
			s.logger.Warn("Failed to persist history record",
				zap.String("job_id", rec.JobID), zap.Error(err))
		}
	}
}

// Get returns a copy of the live state for a job.
func (s *Store) Get(id string) (domain.LiveJobState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.downloads[id]
	if !ok {
		return domain.LiveJobState{}, false
	}
	return *state, true
}

// All returns a copy of every live state.
func (s *Store) All() []domain.LiveJobState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LiveJobState, 0, len(s.downloads))
	for _, state := range s.downloads {
		out = append(out, *state)
	}
	return out
}

// Remove drops a job from the live view. History is untouched.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.downloads, id)
}

// ClearCompleted drops every job in a terminal status and returns the count.
func (s *Store) ClearCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, state := range s.downloads {
		if state.Status.IsTerminal() {
			delete(s.downloads, id)
			removed++
		}
	}
	return removed
}

// ClearHistory drops all terminal history, in memory and on disk.
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.historySeen = make(map[string]struct{})
	if s.repo != nil {
		return s.repo.DeleteHistory()
	}
	return nil
}

// RecentHistory returns up to 20 history records, newest first.
func (s *Store) RecentHistory() []domain.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.history)
	if n > recentLimit {
		n = recentLimit
	}
	out := make([]domain.HistoryRecord, n)
	for i := 0; i < n; i++ {
		out[i] = *s.history[i]
	}
	return out
}

// HistoryLen returns the number of retained history records.
func (s *Store) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// PushNotification appends a notification to the retained log and to the
// visible list. Previously dismissed ids are never re-displayed.
func (s *Store) PushNotification(rec *domain.NotificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.dismissed[rec.ID]; gone {
		return
	}

	s.notifications = append([]*domain.NotificationRecord{rec}, s.notifications...)
	if len(s.notifications) > s.notificationLimit {
		s.notifications = s.notifications[:s.notificationLimit]
	}

	s.visible = append([]*domain.NotificationRecord{rec}, s.visible...)
	if len(s.visible) > s.visibleLimit {
		s.visible = s.visible[:s.visibleLimit]
	}

	if s.repo != nil {
		if err := s.repo.SaveNotification(rec); err != nil {
			s.logger.Warn("Failed to persist notification",
				zap.String("id", rec.ID), zap.Error(err))
		} else if err := s.repo.PruneNotifications(s.notificationLimit); err != nil {
			s.logger.Warn("Failed to prune notification log", zap.Error(err))
		}
	}
}

// VisibleNotification pairs a record with its remaining display fraction.
type VisibleNotification struct {
	domain.NotificationRecord
	RemainingFraction float64 `json:"remaining_fraction"`
}

// VisibleNotifications returns the currently displayed notifications,
// newest first, with their remaining fractions computed against now.
func (s *Store) VisibleNotifications(now time.Time) []VisibleNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]VisibleNotification, 0, len(s.visible))
	for _, rec := range s.visible {
		out = append(out, VisibleNotification{
			NotificationRecord: *rec,
			RemainingFraction:  rec.RemainingFraction(now),
		})
	}
	return out
}

// ExpireNotifications evicts visible notifications whose display time has
// elapsed and returns how many were evicted.
func (s *Store) ExpireNotifications(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.visible[:0]
	evicted := 0
	for _, rec := range s.visible {
		if rec.Expired(now) {
			evicted++
			continue
		}
		kept = append(kept, rec)
	}
	s.visible = kept
	return evicted
}

// Dismiss removes a visible notification immediately, regardless of its
// remaining display time. Dismissals do not survive a restart.
func (s *Store) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dismissed[id] = struct{}{}
	for i, rec := range s.visible {
		if rec.ID == id {
			s.visible = append(s.visible[:i], s.visible[i+1:]...)
			return true
		}
	}
	return false
}

// RecentNotifications returns up to 20 retained notifications, newest first.
func (s *Store) RecentNotifications() []domain.NotificationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.notifications)
	if n > recentLimit {
		n = recentLimit
	}
	out := make([]domain.NotificationRecord, n)
	for i := 0; i < n; i++ {
		out[i] = *s.notifications[i]
	}
	return out
}

// Stats counts live jobs per unified status.
func (s *Store) Stats() map[domain.UnifiedStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[domain.UnifiedStatus]int)
	for _, state := range s.downloads {
		stats[state.Status]++
	}
	return stats
}
