package track

// DedupCapacity is the fixed size of the completion dedup window.
// Identifiers older than the last DedupCapacity insertions may be forgotten;
// that is acceptable because the persisted log is the source of truth for
// history and this window only prevents double-recording within the running
// session.
const DedupCapacity = 10

// DedupWindow is a bounded FIFO set of recently processed completion ids
// with O(1) membership. A ring buffer carries insertion order; a mirror set
// carries membership. Eviction and insertion are performed together within
// one call so the two structures can never diverge.
type DedupWindow struct {
	ring []string
	set  map[string]struct{}
	head int // next write position; oldest entry once full
}

// NewDedupWindow creates a window with the given capacity.
// Capacity must be positive.
func NewDedupWindow(capacity int) *DedupWindow {
	if capacity <= 0 {
		capacity = DedupCapacity
	}
	return &DedupWindow{
		ring: make([]string, 0, capacity),
		set:  make(map[string]struct{}, capacity),
	}
}

// Contains reports whether id is within the recent window.
func (w *DedupWindow) Contains(id string) bool {
	_, ok := w.set[id]
	return ok
}

// Insert adds id to the window. Inserting an id that is already present is a
// no-op: it must not create a duplicate ring entry that could later evict an
// unrelated id early. When the window is full, the single oldest id is
// evicted first.
func (w *DedupWindow) Insert(id string) {
	if w.Contains(id) {
		return
	}

	if len(w.ring) < cap(w.ring) {
		w.ring = append(w.ring, id)
		w.set[id] = struct{}{}
		return
	}

	// Full: overwrite the oldest slot.
	delete(w.set, w.ring[w.head])
	w.ring[w.head] = id
	w.set[id] = struct{}{}
	w.head = (w.head + 1) % cap(w.ring)
}

// Len returns the number of ids currently tracked.
func (w *DedupWindow) Len() int {
	return len(w.set)
}
