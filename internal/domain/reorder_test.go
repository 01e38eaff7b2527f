package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedView(ids ...string) []QueueViewItem {
	items := make([]QueueViewItem, len(ids))
	for i, id := range ids {
		items[i] = QueueViewItem{
			LiveJobState: LiveJobState{ID: id, Status: StatusQueued},
			Position:     i,
		}
	}
	return items
}

func viewIDs(items []QueueViewItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestReorder_MoveForward(t *testing.T) {
	out, err := Reorder(queuedView("a", "b", "c", "d"), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a", "d"}, viewIDs(out))
}

func TestReorder_MoveBackward(t *testing.T) {
	out, err := Reorder(queuedView("a", "b", "c", "d"), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b", "c"}, viewIDs(out))
}

func TestReorder_SamePosition(t *testing.T) {
	out, err := Reorder(queuedView("a", "b", "c"), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, viewIDs(out))
}

func TestReorder_PermutationInvariant(t *testing.T) {
	items := queuedView("a", "b", "c", "d", "e")

	for from := 0; from < len(items); from++ {
		for to := 0; to < len(items); to++ {
			out, err := Reorder(items, from, to)
			require.NoError(t, err)
			require.Len(t, out, len(items))

			// Same multiset of ids.
			seen := make(map[string]int)
			for _, it := range out {
				seen[it.ID]++
			}
			for _, it := range items {
				assert.Equal(t, 1, seen[it.ID])
			}

			// Removing the moved element restores the original relative order.
			moved := items[from].ID
			rest := make([]string, 0, len(out)-1)
			for _, it := range out {
				if it.ID != moved {
					rest = append(rest, it.ID)
				}
			}
			expected := make([]string, 0, len(items)-1)
			for i, it := range items {
				if i != from {
					expected = append(expected, it.ID)
				}
			}
			assert.Equal(t, expected, rest)

			// Positions are reassigned contiguously.
			for i, it := range out {
				assert.Equal(t, i, it.Position)
			}
		}
	}
}

func TestReorder_OutOfBounds(t *testing.T) {
	items := queuedView("a", "b")

	_, err := Reorder(items, -1, 0)
	assert.Error(t, err)

	_, err = Reorder(items, 0, 2)
	assert.Error(t, err)
}

func TestReorder_NonQueuedNotDraggable(t *testing.T) {
	items := queuedView("a", "b", "c")
	items[0].Status = StatusDownloading

	_, err := Reorder(items, 0, 2)
	assert.Error(t, err)

	_, err = Reorder(items, 2, 0)
	assert.Error(t, err)
}

func TestReorder_DoesNotMutateInput(t *testing.T) {
	items := queuedView("a", "b", "c")
	_, err := Reorder(items, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, viewIDs(items))
}

func TestDragState_Lifecycle(t *testing.T) {
	items := queuedView("a", "b", "c")

	drag, err := BeginDrag(items, 0)
	require.NoError(t, err)
	assert.Equal(t, Dragging, drag.Phase)

	out, drag, err := drag.Drop(items, 2)
	require.NoError(t, err)
	assert.Equal(t, DragIdle, drag.Phase)
	assert.Equal(t, []string{"b", "c", "a"}, viewIDs(out))
}

func TestDragState_Cancel(t *testing.T) {
	items := queuedView("a", "b")

	drag, err := BeginDrag(items, 1)
	require.NoError(t, err)

	drag = drag.Cancel()
	assert.Equal(t, DragIdle, drag.Phase)

	_, _, err = drag.Drop(items, 0)
	assert.Error(t, err, "drop after cancel must fail")
}

func TestBeginDrag_RejectsActiveItem(t *testing.T) {
	items := queuedView("a", "b")
	items[1].Status = StatusProcessing

	_, err := BeginDrag(items, 1)
	assert.Error(t, err)
}
