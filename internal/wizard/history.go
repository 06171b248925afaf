package wizard

import "slices"

// history is a bounded cursor over selection snapshots. The first item is a
// base snapshot so the cursor always points at something; adding while the
// cursor sits mid-list discards the forward tail, matching redo semantics.
type history struct {
	items []Selection
	index int
	limit int
}

func newHistory(base Selection, limit int) *history {
	return &history{
		items: []Selection{base},
		limit: limit,
	}
}

func (h *history) current() Selection {
	return h.items[h.index]
}

func (h *history) isFirst() bool {
	return h.index == 0
}

func (h *history) isLast() bool {
	return h.index == len(h.items)-1
}

// add records a snapshot after the cursor and moves the cursor onto it. When
// a positive limit is exceeded the oldest snapshots are dropped.
func (h *history) add(s Selection) {
	h.items = append(h.items[:h.index+1], s)
	h.index = len(h.items) - 1
	if h.limit > 0 && len(h.items) > h.limit {
		drop := len(h.items) - h.limit
		h.items = slices.Clone(h.items[drop:])
		h.index -= drop
	}
}

// back moves the cursor one snapshot toward the base, clamping there.
func (h *history) back() {
	if h.index > 0 {
		h.index--
	}
}

// forward moves the cursor one snapshot toward the newest, clamping there.
func (h *history) forward() {
	if h.index < len(h.items)-1 {
		h.index++
	}
}

func (h *history) len() int {
	return len(h.items)
}
