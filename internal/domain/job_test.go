package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategory_UnifiedStatus(t *testing.T) {
	tests := []struct {
		category Category
		expected UnifiedStatus
	}{
		{CategoryDownloading, StatusDownloading},
		{CategoryProcessing, StatusProcessing},
		{CategoryWaiting, StatusWaiting},
		{CategoryQueued, StatusQueued},
		{CategoryAvailable, StatusCompleted},
		{CategoryDone, StatusCompleted},
		{CategoryError, StatusError},
		{CategoryCancelled, StatusIdle},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.category.UnifiedStatus())
		})
	}
}

func TestUnifiedStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusError.IsTerminal())
	assert.False(t, StatusDownloading.IsTerminal())
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusWaiting.IsTerminal())
	assert.False(t, StatusIdle.IsTerminal())
}

func TestNotificationKind_DisplayDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, NotificationStarted.DisplayDuration())
	assert.Equal(t, 5*time.Second, NotificationCompleted.DisplayDuration())
	assert.Equal(t, 7*time.Second, NotificationFailed.DisplayDuration())
}

func TestNotificationRecord_Expired(t *testing.T) {
	created := time.Now()
	rec := &NotificationRecord{
		ID:         "n1",
		Kind:       NotificationStarted,
		CreatedAt:  created,
		DurationMs: 3000,
	}

	assert.False(t, rec.Expired(created.Add(2*time.Second)))
	assert.True(t, rec.Expired(created.Add(3*time.Second)))
	assert.True(t, rec.Expired(created.Add(time.Minute)))
}

func TestNotificationRecord_RemainingFraction(t *testing.T) {
	created := time.Now()
	rec := &NotificationRecord{DurationMs: 4000, CreatedAt: created}

	assert.InDelta(t, 1.0, rec.RemainingFraction(created), 0.001)
	assert.InDelta(t, 0.5, rec.RemainingFraction(created.Add(2*time.Second)), 0.001)
	assert.Equal(t, 0.0, rec.RemainingFraction(created.Add(10*time.Second)))
}

func TestRawJob_ToLiveState(t *testing.T) {
	raw := RawJob{
		Title:     "Dune",
		Author:    "Frank Herbert",
		Progress:  42.5,
		Size:      "1.2 MB",
		Format:    "epub",
		Preview:   "http://covers/dune.jpg",
		WaitTime:  60,
		WaitStart: 1700000000,
	}

	state := raw.ToLiveState("abc", StatusDownloading)

	assert.Equal(t, "abc", state.ID)
	assert.Equal(t, StatusDownloading, state.Status)
	assert.Equal(t, 42.5, state.Progress)
	assert.Equal(t, "Dune", state.Title)
	assert.Equal(t, "http://covers/dune.jpg", state.CoverURL)
	assert.Equal(t, int64(60), state.WaitTime)
}

func TestRawJob_ToLiveState_DefaultsMissingFields(t *testing.T) {
	state := RawJob{}.ToLiveState("x", StatusQueued)

	assert.Equal(t, 0.0, state.Progress)
	assert.Empty(t, state.Title)
	assert.Empty(t, state.Author)
	assert.Empty(t, state.Error)
	assert.Zero(t, state.WaitTime)
}

func TestRawJob_ToLiveState_ClampsProgress(t *testing.T) {
	assert.Equal(t, 100.0, RawJob{Progress: 250}.ToLiveState("a", StatusDownloading).Progress)
	assert.Equal(t, 0.0, RawJob{Progress: -5}.ToLiveState("a", StatusDownloading).Progress)
}

func TestSnapshot_Jobs_NilSafe(t *testing.T) {
	var snap Snapshot
	assert.Nil(t, snap.Jobs(CategoryDownloading))
	assert.False(t, snap.Has(CategoryDownloading, "a"))

	snap = Snapshot{}
	assert.Empty(t, snap.Jobs(CategoryQueued))
}

func TestSnapshot_Lookup(t *testing.T) {
	snap := Snapshot{
		CategoryQueued: {"b1": {Title: "Queued Book"}},
		CategoryDone:   {"b2": {Title: "Done Book"}},
	}

	raw, ok := snap.Lookup("b2")
	assert.True(t, ok)
	assert.Equal(t, "Done Book", raw.Title)

	_, ok = snap.Lookup("nope")
	assert.False(t, ok)
}

func TestNewHistoryRecord(t *testing.T) {
	state := &LiveJobState{
		ID:     "h1",
		Status: StatusError,
		Title:  "Broken Book",
		Error:  "mirror timeout",
	}

	rec := NewHistoryRecord(state)

	assert.Equal(t, "h1", rec.JobID)
	assert.Equal(t, StatusError, rec.Status)
	assert.Equal(t, "mirror timeout", rec.Error)
	assert.False(t, rec.CreatedAt.IsZero())
}
