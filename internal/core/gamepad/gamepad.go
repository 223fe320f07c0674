package gamepad

import (
	"sync"
	"time"
)

// MaxSlots is the number of gamepad slots a Hub tracks.
const MaxSlots = 4

// State is one polled snapshot of a gamepad.
type State struct {
	Axes      []float64 `json:"axes"`
	Buttons   []float64 `json:"buttons"`
	Timestamp time.Time `json:"timestamp"`
}

// Pad is the polling contract the loop consumes.
type Pad interface {
	// Supported reports whether the host can deliver gamepad input at all.
	Supported() bool
	// States polls every slot and returns one entry per slot; an empty slot
	// is nil. Each call is one poll.
	States() []*State
	// PreviousState returns what the poll before the last one saw in slot.
	PreviousState(slot int) *State
}

var _ Pad = (*Hub)(nil)

// Hub is an in-memory Pad fed by hosts. It is safe for concurrent use so
// hosts may update it from their own goroutines.
//
// Hosts overwrite the latest state with Update. Previous states follow the
// polls, not the updates: a state that stays unchanged across two polls is
// reported as both current and previous by the second one.
type Hub struct {
	mu        sync.RWMutex
	supported bool
	latest    [MaxSlots]*State
	polled    [MaxSlots]*State
	previous  [MaxSlots]*State
}

func NewHub(supported bool) *Hub {
	return &Hub{supported: supported}
}

func (h *Hub) Supported() bool {
	return h.supported
}

// Update stores s as the latest state of slot. Out of range slots are
// ignored.
func (h *Hub) Update(slot int, s *State) {
	if slot < 0 || slot >= MaxSlots {
		return
	}
	h.mu.Lock()
	h.latest[slot] = s
	h.mu.Unlock()
}

// Disconnect empties slot, forgetting its poll history.
func (h *Hub) Disconnect(slot int) {
	if slot < 0 || slot >= MaxSlots {
		return
	}
	h.mu.Lock()
	h.latest[slot] = nil
	h.polled[slot] = nil
	h.previous[slot] = nil
	h.mu.Unlock()
}

// States polls the hub: what the last poll saw becomes previous and the
// latest states become the polled ones.
func (h *Hub) States() []*State {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previous = h.polled
	h.polled = h.latest
	out := make([]*State, MaxSlots)
	copy(out, h.polled[:])
	return out
}

func (h *Hub) PreviousState(slot int) *State {
	if slot < 0 || slot >= MaxSlots {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.previous[slot]
}
