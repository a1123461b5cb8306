// Package input tracks the state of the 16 key CHIP-8 keypad.
package input

// KeyCount is the number of logical keys, numbered 0x0 to 0xF.
const KeyCount = 16

// KeyStatus is the state transition carried by an Event.
type KeyStatus uint8

// Key status values.
const (
	Released KeyStatus = iota
	Pressed
)

func (s KeyStatus) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Event is a logical key transition sent from a frontend to the scheduler.
type Event struct {
	Key    uint8
	Status KeyStatus
}

// Keypad holds one bit per key, bit k is set while key k is held down.
type Keypad struct {
	state uint16
}

// Press marks the key as held. Keys outside 0x0-0xF are ignored.
func (k *Keypad) Press(key uint8) {
	if key >= KeyCount {
		return
	}
	k.state |= 1 << key
}

// Release marks the key as not held. Releasing a released key is a no-op.
func (k *Keypad) Release(key uint8) {
	if key >= KeyCount {
		return
	}
	k.state &^= 1 << key
}

// Update applies the status to the key.
func (k *Keypad) Update(key uint8, status KeyStatus) {
	if status == Pressed {
		k.Press(key)
		return
	}
	k.Release(key)
}

// IsPressed reports whether the key is held. Keys outside 0x0-0xF are never pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return k.state&(1<<key) != 0
}

// State returns the raw key bitmap.
func (k *Keypad) State() uint16 {
	return k.state
}

// Reset releases all keys.
func (k *Keypad) Reset() {
	k.state = 0
}
