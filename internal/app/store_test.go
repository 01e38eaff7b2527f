package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// mockStateRepo implements domain.StateRepository for testing
type mockStateRepo struct {
	history       []*domain.HistoryRecord
	notifications []*domain.NotificationRecord
	pruned        int
}

func (m *mockStateRepo) SaveHistory(rec *domain.HistoryRecord) error {
	for _, existing := range m.history {
		if existing.JobID == rec.JobID {
			return nil
		}
	}
	m.history = append([]*domain.HistoryRecord{rec}, m.history...)
	return nil
}

func (m *mockStateRepo) LoadHistory(limit int) ([]*domain.HistoryRecord, error) {
	if len(m.history) > limit {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockStateRepo) DeleteHistory() error {
	m.history = nil
	return nil
}

func (m *mockStateRepo) SaveNotification(rec *domain.NotificationRecord) error {
	m.notifications = append([]*domain.NotificationRecord{rec}, m.notifications...)
	return nil
}

func (m *mockStateRepo) LoadNotifications(limit int) ([]*domain.NotificationRecord, error) {
	if len(m.notifications) > limit {
		return m.notifications[:limit], nil
	}
	return m.notifications, nil
}

func (m *mockStateRepo) PruneNotifications(keep int) error {
	m.pruned++
	if len(m.notifications) > keep {
		m.notifications = m.notifications[:keep]
	}
	return nil
}

func (m *mockStateRepo) Close() error { return nil }

func newTestStore() *Store {
	cfg := domain.DefaultConfig()
	return NewStore(&cfg.Queue, nil, zap.NewNop())
}

func TestStore_UpsertAndGet(t *testing.T) {
	store := newTestStore()

	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusQueued, Title: "Book A"})

	state, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, domain.StatusQueued, state.Status)
	assert.Equal(t, "Book A", state.Title)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	store := newTestStore()
	state := domain.LiveJobState{ID: "a", Status: domain.StatusCompleted, Title: "Book A"}

	store.Upsert(state)
	first, ok := store.Get("a")
	require.True(t, ok)

	store.Upsert(state)
	second, ok := store.Get("a")
	require.True(t, ok)

	assert.Equal(t, first, second, "re-applying the same state must change nothing")
	assert.Equal(t, 1, store.HistoryLen(), "history must not gain a duplicate")
}

func TestStore_TerminalStampsTimestampOnce(t *testing.T) {
	store := newTestStore()

	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	first, _ := store.Get("a")
	require.NotEmpty(t, first.Timestamp)

	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	second, _ := store.Get("a")
	assert.Equal(t, first.Timestamp, second.Timestamp)
}

func TestStore_HistoryAppendOncePerJob(t *testing.T) {
	store := newTestStore()

	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusError, Error: "boom"})
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusError, Error: "boom"})
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})

	assert.Equal(t, 1, store.HistoryLen())
	recent := store.RecentHistory()
	require.Len(t, recent, 1)
	assert.Equal(t, domain.StatusError, recent[0].Status)
}

func TestStore_HistoryCap(t *testing.T) {
	store := newTestStore()

	for i := 0; i < 150; i++ {
		store.Upsert(domain.LiveJobState{
			ID:     fmt.Sprintf("job-%03d", i),
			Status: domain.StatusCompleted,
		})
	}

	assert.Equal(t, 100, store.HistoryLen())
	recent := store.RecentHistory()
	require.Len(t, recent, 20)
	assert.Equal(t, "job-149", recent[0].JobID, "newest first")
}

func TestStore_ClearCompleted(t *testing.T) {
	store := newTestStore()
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	store.Upsert(domain.LiveJobState{ID: "b", Status: domain.StatusError})
	store.Upsert(domain.LiveJobState{ID: "c", Status: domain.StatusDownloading})

	removed := store.ClearCompleted()

	assert.Equal(t, 2, removed)
	_, ok := store.Get("c")
	assert.True(t, ok, "active jobs survive clear")
	assert.Len(t, store.All(), 1)
}

func TestStore_ClearHistory(t *testing.T) {
	store := newTestStore()
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	require.Equal(t, 1, store.HistoryLen())

	require.NoError(t, store.ClearHistory())
	assert.Zero(t, store.HistoryLen())

	// A job already in history can re-enter after the wipe.
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	assert.Equal(t, 1, store.HistoryLen())
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore()
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusQueued})

	store.Remove("a")

	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestStore_Patch(t *testing.T) {
	store := newTestStore()
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusQueued, Title: "Book A"})

	store.Patch("a", func(state *domain.LiveJobState) {
		state.Status = domain.StatusDownloading
		state.Progress = 0
	})

	state, _ := store.Get("a")
	assert.Equal(t, domain.StatusDownloading, state.Status)
	assert.Equal(t, "Book A", state.Title, "patch preserves untouched fields")
}

func TestStore_VisibleNotificationCap(t *testing.T) {
	store := newTestStore()

	for i := 0; i < 15; i++ {
		store.PushNotification(&domain.NotificationRecord{
			ID:         fmt.Sprintf("n-%02d", i),
			Kind:       domain.NotificationStarted,
			JobID:      fmt.Sprintf("job-%02d", i),
			CreatedAt:  time.Now(),
			DurationMs: 3000,
		})
	}

	visible := store.VisibleNotifications(time.Now())
	require.Len(t, visible, 10)
	assert.Equal(t, "n-14", visible[0].ID, "newest first")
}

func TestStore_ExpireNotifications(t *testing.T) {
	store := newTestStore()
	now := time.Now()

	store.PushNotification(&domain.NotificationRecord{
		ID: "old", Kind: domain.NotificationStarted, CreatedAt: now.Add(-10 * time.Second), DurationMs: 3000,
	})
	store.PushNotification(&domain.NotificationRecord{
		ID: "fresh", Kind: domain.NotificationFailed, CreatedAt: now, DurationMs: 7000,
	})

	evicted := store.ExpireNotifications(now)

	assert.Equal(t, 1, evicted)
	visible := store.VisibleNotifications(now)
	require.Len(t, visible, 1)
	assert.Equal(t, "fresh", visible[0].ID)
}

func TestStore_Dismiss(t *testing.T) {
	store := newTestStore()
	rec := &domain.NotificationRecord{
		ID: "n1", Kind: domain.NotificationCompleted, CreatedAt: time.Now(), DurationMs: 5000,
	}
	store.PushNotification(rec)

	assert.True(t, store.Dismiss("n1"))
	assert.Empty(t, store.VisibleNotifications(time.Now()))

	// A dismissed id never re-displays.
	store.PushNotification(rec)
	assert.Empty(t, store.VisibleNotifications(time.Now()))

	assert.False(t, store.Dismiss("unknown"))
}

func TestStore_RestoresFromRepository(t *testing.T) {
	repo := &mockStateRepo{
		history: []*domain.HistoryRecord{
			{JobID: "h1", Status: domain.StatusCompleted, Title: "Restored"},
		},
		notifications: []*domain.NotificationRecord{
			{ID: "n1", Kind: domain.NotificationCompleted, JobID: "h1"},
		},
	}
	cfg := domain.DefaultConfig()
	store := NewStore(&cfg.Queue, repo, zap.NewNop())

	assert.Equal(t, 1, store.HistoryLen())
	require.Len(t, store.RecentNotifications(), 1)

	// Restored job ids keep their append-once guard.
	store.Upsert(domain.LiveJobState{ID: "h1", Status: domain.StatusCompleted})
	assert.Equal(t, 1, store.HistoryLen())
}

func TestStore_PersistsHistoryAndNotifications(t *testing.T) {
	repo := &mockStateRepo{}
	cfg := domain.DefaultConfig()
	store := NewStore(&cfg.Queue, repo, zap.NewNop())

	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	store.PushNotification(&domain.NotificationRecord{
		ID: "n1", Kind: domain.NotificationCompleted, JobID: "a", CreatedAt: time.Now(), DurationMs: 5000,
	})

	assert.Len(t, repo.history, 1)
	assert.Len(t, repo.notifications, 1)
	assert.Equal(t, 1, repo.pruned)
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore()
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusQueued})
	store.Upsert(domain.LiveJobState{ID: "b", Status: domain.StatusQueued})
	store.Upsert(domain.LiveJobState{ID: "c", Status: domain.StatusDownloading})

	stats := store.Stats()

	assert.Equal(t, 2, stats[domain.StatusQueued])
	assert.Equal(t, 1, stats[domain.StatusDownloading])
	assert.Zero(t, stats[domain.StatusError])
}
