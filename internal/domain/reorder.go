package domain

import "fmt"

// QueueViewItem is a live state annotated with its index in the rendered,
// filtered and sorted queue list. It is recomputed per render and never
// persisted; a local reorder is a display overlay only.
type QueueViewItem struct {
	LiveJobState
	Position  int        `json:"position"`
	Countdown *Countdown `json:"countdown,omitempty"`
}

// DragPhase is the reorder gesture state. Valid transitions:
// idle -> dragging -> (dropped | cancelled) -> idle.
type DragPhase int

const (
	DragIdle DragPhase = iota
	Dragging
)

// DragState tracks one in-flight drag gesture over a queue view.
type DragState struct {
	Phase        DragPhase
	DraggedIndex int
}

// BeginDrag starts a gesture at the given index. Only items still in
// queued status are draggable; active and terminal items stay in place.
func BeginDrag(items []QueueViewItem, index int) (DragState, error) {
	if index < 0 || index >= len(items) {
		return DragState{}, fmt.Errorf("drag index %d out of bounds [0,%d)", index, len(items))
	}
	if items[index].Status != StatusQueued {
		return DragState{}, fmt.Errorf("item %s is %s, only queued items are draggable",
			items[index].ID, items[index].Status)
	}
	return DragState{Phase: Dragging, DraggedIndex: index}, nil
}

// Drop completes the gesture, producing the reordered view. The returned
// state is back at idle whether or not the move was legal.
func (d DragState) Drop(items []QueueViewItem, hoverIndex int) ([]QueueViewItem, DragState, error) {
	if d.Phase != Dragging {
		return items, DragState{}, fmt.Errorf("drop without an active drag")
	}
	moved, err := Reorder(items, d.DraggedIndex, hoverIndex)
	return moved, DragState{}, err
}

// Cancel abandons the gesture without changing the view.
func (d DragState) Cancel() DragState {
	return DragState{}
}

// Reorder moves the element at draggedIndex to hoverIndex, preserving the
// relative order of every other element. This is a single-element move,
// not a swap. Both endpoints must hold queued items.
func Reorder(items []QueueViewItem, draggedIndex, hoverIndex int) ([]QueueViewItem, error) {
	n := len(items)
	if draggedIndex < 0 || draggedIndex >= n {
		return nil, fmt.Errorf("dragged index %d out of bounds [0,%d)", draggedIndex, n)
	}
	if hoverIndex < 0 || hoverIndex >= n {
		return nil, fmt.Errorf("hover index %d out of bounds [0,%d)", hoverIndex, n)
	}
	if items[draggedIndex].Status != StatusQueued {
		return nil, fmt.Errorf("item %s is %s, only queued items can be moved",
			items[draggedIndex].ID, items[draggedIndex].Status)
	}
	if items[hoverIndex].Status != StatusQueued {
		return nil, fmt.Errorf("item %s is %s, moves must land on a queued slot",
			items[hoverIndex].ID, items[hoverIndex].Status)
	}

	out := make([]QueueViewItem, 0, n)
	out = append(out, items[:draggedIndex]...)
	out = append(out, items[draggedIndex+1:]...)

	moved := items[draggedIndex]
	out = append(out[:hoverIndex], append([]QueueViewItem{moved}, out[hoverIndex:]...)...)

	for i := range out {
		out[i].Position = i
	}
	return out, nil
}
