package navigation

import "meshbrowse/contentid"

// History is a back/forward list of visited identifiers. The index is -1
// when empty and otherwise always within [0, len-1].
type History struct {
	entries []contentid.ID
	index   int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{index: -1}
}

// Push appends id after the current entry, dropping any forward entries,
// and makes it current.
func (h *History) Push(id contentid.ID) {
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, id)
	h.index = len(h.entries) - 1
}

// CanBack reports whether Back would move.
func (h *History) CanBack() bool { return h.index > 0 }

// CanForward reports whether Forward would move.
func (h *History) CanForward() bool { return h.index < len(h.entries)-1 }

// Back moves one entry back and returns it.
func (h *History) Back() (contentid.ID, bool) {
	if !h.CanBack() {
		return "", false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves one entry forward and returns it.
func (h *History) Forward() (contentid.ID, bool) {
	if !h.CanForward() {
		return "", false
	}
	h.index++
	return h.entries[h.index], true
}

// Current returns the entry at the index.
func (h *History) Current() (contentid.ID, bool) {
	if h.index < 0 {
		return "", false
	}
	return h.entries[h.index], true
}

// Index returns the current position, -1 when empty.
func (h *History) Index() int { return h.index }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the entries.
func (h *History) Entries() []contentid.ID {
	out := make([]contentid.ID, len(h.entries))
	copy(out, h.entries)
	return out
}
