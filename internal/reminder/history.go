package reminder

import (
	"sync"
	"time"
)

// SendHistory tracks the last interval reminder sent per subscription.
// It is an explicit engine dependency so the default in-memory map can
// be swapped for a persisted store or a test double.
type SendHistory interface {
	Last(id int64) (time.Time, bool)
	Record(id int64, t time.Time)
}

// memoryHistory is the default process-local implementation. A restart
// forgets throttle state, which at worst produces one extra interval
// reminder.
type memoryHistory struct {
	mu   sync.Mutex
	last map[int64]time.Time
}

// NewMemoryHistory returns an in-memory SendHistory.
func NewMemoryHistory() SendHistory {
	return &memoryHistory{last: make(map[int64]time.Time)}
}

func (h *memoryHistory) Last(id int64) (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.last[id]
	return t, ok
}

func (h *memoryHistory) Record(id int64, t time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[id] = t
}
