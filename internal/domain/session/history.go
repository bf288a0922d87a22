package session

// DefaultHistorySize is how many closed sessions can be reopened
const DefaultHistorySize = 10

// History is a bounded stack of closed session snapshots. Pushing past
// capacity evicts the oldest entry. Not safe for concurrent use; the
// Registry guards it.
type History struct {
	entries  []Serialized
	capacity int
}

// NewHistory creates a history holding at most capacity entries. A
// non-positive capacity uses DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		entries:  make([]Serialized, 0, capacity),
		capacity: capacity,
	}
}

// Push records a snapshot, evicting the oldest when full
func (h *History) Push(s Serialized) {
	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, s)
}

// Pop removes and returns the newest snapshot
func (h *History) Pop() (Serialized, bool) {
	if len(h.entries) == 0 {
		return Serialized{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

// Len returns the number of stored snapshots
func (h *History) Len() int {
	return len(h.entries)
}

// Capacity returns the maximum number of stored snapshots
func (h *History) Capacity() int {
	return h.capacity
}

// Entries returns the snapshots oldest first
func (h *History) Entries() []Serialized {
	out := make([]Serialized, len(h.entries))
	copy(out, h.entries)
	return out
}
