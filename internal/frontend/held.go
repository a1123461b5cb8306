package frontend

import (
	"sort"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
)

// heldKeys emulates key releases for inputs that only report presses.
type heldKeys struct {
	keymap   config.Keymap
	hold     time.Duration
	deadline map[uint8]time.Time
}

func newHeldKeys(keymap config.Keymap, hold time.Duration) *heldKeys {
	return &heldKeys{
		keymap:   keymap,
		hold:     hold,
		deadline: map[uint8]time.Time{},
	}
}

// press records a press of the named key. It returns the mapped key,
// whether it was newly pressed and whether the name is mapped at all.
func (h *heldKeys) press(name string, now time.Time) (uint8, bool, bool) {
	key, ok := h.keymap.Lookup(name)
	if !ok {
		return 0, false, false
	}
	_, held := h.deadline[key]
	h.deadline[key] = now.Add(h.hold)
	return key, !held, true
}

// expire returns the keys whose hold time ran out, in ascending order.
func (h *heldKeys) expire(now time.Time) []uint8 {
	var released []uint8
	for key, deadline := range h.deadline {
		if !now.Before(deadline) {
			released = append(released, key)
			delete(h.deadline, key)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	return released
}
