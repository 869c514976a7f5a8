package components

import (
	"slices"

	"github.com/automoto/retrorealms/shared/netconfig"
)

// KeyBuffer tracks which movement keys are held, newest last, so releasing the
// newest key falls back to the one held before it.
type KeyBuffer struct {
	held []netconfig.Direction
}

// Press records dir as the newest held key and reports whether the effective
// direction changed.
func (k *KeyBuffer) Press(dir netconfig.Direction) bool {
	prev, had := k.Current()
	k.held = slices.DeleteFunc(k.held, func(d netconfig.Direction) bool { return d == dir })
	k.held = append(k.held, dir)
	return !had || prev != dir
}

// Release forgets dir and reports whether the effective direction changed.
func (k *KeyBuffer) Release(dir netconfig.Direction) bool {
	prev, had := k.Current()
	k.held = slices.DeleteFunc(k.held, func(d netconfig.Direction) bool { return d == dir })
	cur, has := k.Current()
	return had != has || prev != cur
}

// Current returns the effective direction, if any key is held.
func (k *KeyBuffer) Current() (netconfig.Direction, bool) {
	if len(k.held) == 0 {
		return 0, false
	}
	return k.held[len(k.held)-1], true
}

// Clear forgets every held key.
func (k *KeyBuffer) Clear() {
	k.held = k.held[:0]
}

// ClearKeys satisfies world.InputBuffer.
func (k *KeyBuffer) ClearKeys() {
	k.Clear()
}
