// Package reorder moves items within an ordered list and tracks a single
// in-progress drag.
package reorder

import (
	"errors"
	"fmt"
	"sync"
)

var ErrIndexOutOfRange = errors.New("reorder: index out of range")

// Move returns a copy of items with the element at from removed and
// re-inserted at to. The input slice is never modified.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) {
		return nil, fmt.Errorf("%w: from=%d len=%d", ErrIndexOutOfRange, from, len(items))
	}
	if to < 0 || to >= len(items) {
		return nil, fmt.Errorf("%w: to=%d len=%d", ErrIndexOutOfRange, to, len(items))
	}

	out := make([]T, len(items))
	copy(out, items)
	if from == to {
		return out, nil
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out, nil
}

// Item identifies the element being dragged and where it started.
type Item struct {
	ID    string
	Index int
}

// Drag holds at most one dragged item.
type Drag struct {
	mu      sync.Mutex
	current *Item
}

func (d *Drag) Start(id string, index int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = &Item{ID: id, Index: index}
}

func (d *Drag) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
}

func (d *Drag) Dragging() (Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Item{}, false
	}
	return *d.current, true
}

// Locate moves the dragged item's origin to wherever its ID now sits in ids,
// so a drop after a reload moves the item that was picked up. When the ID is
// gone the drag is cancelled and Locate reports false.
func (d *Drag) Locate(ids []string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return false
	}
	for i, id := range ids {
		if id == d.current.ID {
			d.current.Index = i
			return true
		}
	}
	d.current = nil
	return false
}

func (d *Drag) take() (Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Item{}, false
	}
	it := *d.current
	d.current = nil
	return it, true
}

// Drop completes the drag at target. It reports false, with items returned
// unchanged, when nothing is being dragged or the item is dropped where it
// started. The drag is cleared in every case.
func Drop[T any](d *Drag, items []T, target int) ([]T, bool, error) {
	it, ok := d.take()
	if !ok || it.Index == target {
		return items, false, nil
	}
	out, err := Move(items, it.Index, target)
	if err != nil {
		return items, false, err
	}
	return out, true, nil
}

// Canonical translates positions in a filtered view into positions in the
// full list. The target is the canonical index of the visible item that
// currently sits at to.
func Canonical(visibleIDs, allIDs []string, from, to int) (int, int, error) {
	if from < 0 || from >= len(visibleIDs) || to < 0 || to >= len(visibleIDs) {
		return 0, 0, fmt.Errorf("%w: from=%d to=%d visible=%d", ErrIndexOutOfRange, from, to, len(visibleIDs))
	}

	pos := make(map[string]int, len(allIDs))
	for i, id := range allIDs {
		pos[id] = i
	}

	cf, ok := pos[visibleIDs[from]]
	if !ok {
		return 0, 0, fmt.Errorf("reorder: id %q not in list", visibleIDs[from])
	}
	ct, ok := pos[visibleIDs[to]]
	if !ok {
		return 0, 0, fmt.Errorf("reorder: id %q not in list", visibleIDs[to])
	}
	return cf, ct, nil
}
