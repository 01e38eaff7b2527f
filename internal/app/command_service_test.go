package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/bookqueue-go/internal/domain"
)

// mockSink implements domain.ControlSink for testing
type mockSink struct {
	startErr   error
	cancelErr  error
	clearErr   error
	reorderErr error

	started    []string
	cancelled  []string
	cleared    int
	priorities map[string]int
}

func (m *mockSink) StartDownload(ctx context.Context, id string) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started = append(m.started, id)
	return nil
}

func (m *mockSink) Cancel(ctx context.Context, id string) error {
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.cancelled = append(m.cancelled, id)
	return nil
}

func (m *mockSink) ClearCompleted(ctx context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	return nil
}

func (m *mockSink) Reorder(ctx context.Context, priorities map[string]int) error {
	if m.reorderErr != nil {
		return m.reorderErr
	}
	m.priorities = priorities
	return nil
}

func newTestCommandService(sink *mockSink) (*CommandService, *Store) {
	store := newTestStore()
	return NewCommandService(sink, store, zap.NewNop()), store
}

func TestCommandService_StartDownloadOptimistic(t *testing.T) {
	sink := &mockSink{}
	svc, store := newTestCommandService(sink)

	err := svc.StartDownload(context.Background(), "b1", "Book", "Author", "http://covers/b1.jpg")
	require.NoError(t, err)

	state, ok := store.Get("b1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusDownloading, state.Status)
	assert.Zero(t, state.Progress)
	assert.Equal(t, "Book", state.Title)
	assert.Equal(t, []string{"b1"}, sink.started)
}

func TestCommandService_StartDownloadRevertsOnRejection(t *testing.T) {
	sink := &mockSink{startErr: fmt.Errorf("service unavailable")}
	svc, store := newTestCommandService(sink)

	err := svc.StartDownload(context.Background(), "b1", "Book", "", "")
	require.Error(t, err)

	state, ok := store.Get("b1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Contains(t, state.Error, "service unavailable")
}

func TestCommandService_StartDownloadRequiresID(t *testing.T) {
	svc, _ := newTestCommandService(&mockSink{})
	assert.Error(t, svc.StartDownload(context.Background(), "", "Book", "", ""))
}

func TestCommandService_CancelRemovesJob(t *testing.T) {
	sink := &mockSink{}
	svc, store := newTestCommandService(sink)
	store.Upsert(domain.LiveJobState{ID: "b1", Status: domain.StatusQueued})

	require.NoError(t, svc.Cancel(context.Background(), "b1"))

	_, ok := store.Get("b1")
	assert.False(t, ok)
	assert.Equal(t, []string{"b1"}, sink.cancelled)
}

func TestCommandService_CancelKeepsJobOnFailure(t *testing.T) {
	sink := &mockSink{cancelErr: fmt.Errorf("not found")}
	svc, store := newTestCommandService(sink)
	store.Upsert(domain.LiveJobState{ID: "b1", Status: domain.StatusQueued})

	require.Error(t, svc.Cancel(context.Background(), "b1"))

	_, ok := store.Get("b1")
	assert.True(t, ok, "local state untouched when the command fails")
}

func TestCommandService_ClearCompleted(t *testing.T) {
	sink := &mockSink{}
	svc, store := newTestCommandService(sink)
	store.Upsert(domain.LiveJobState{ID: "a", Status: domain.StatusCompleted})
	store.Upsert(domain.LiveJobState{ID: "b", Status: domain.StatusDownloading})

	removed, err := svc.ClearCompleted(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, sink.cleared)
	assert.Len(t, store.All(), 1)
}

func TestCommandService_ConfirmOrder(t *testing.T) {
	sink := &mockSink{}
	svc, _ := newTestCommandService(sink)

	require.NoError(t, svc.ConfirmOrder(context.Background(), []string{"c", "a", "b"}))

	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2}, sink.priorities)
}

func TestCommandService_ConfirmOrderValidates(t *testing.T) {
	svc, _ := newTestCommandService(&mockSink{})

	assert.Error(t, svc.ConfirmOrder(context.Background(), nil))
	assert.Error(t, svc.ConfirmOrder(context.Background(), []string{"a", ""}))
}
