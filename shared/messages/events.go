package messages

import "github.com/automoto/retrorealms/shared/netconfig"

// Event is an inbound, already-decoded server event consumed by the world coordinator.
// The set of events is closed; only types in this package implement it.
type Event interface {
	isEvent()
}

// PlayerInfo describes a single entity in a roster, appearance or state update.
type PlayerInfo struct {
	ID       netconfig.EntityID
	Username string
	Sprite   string
	X, Y     float64
	Dir      string // "up", "down", "left", "right"
}

// MapInfo describes a whole map area. It replaces everything the client knows.
type MapInfo struct {
	Width   int     // tiles
	Height  int     // tiles
	Layers  [][]int // row-major tile ids, one grid per layer, bottom first
	Players []PlayerInfo
}

// GameState is the periodic full-roster position broadcast.
type GameState struct {
	Players []PlayerInfo
}

// MoveStart is sent when an entity begins moving (or turns while moving).
type MoveStart struct {
	ID  netconfig.EntityID
	Dir string
}

// MoveStop is sent when an entity stops moving, with its authoritative final position.
type MoveStop struct {
	ID   netconfig.EntityID
	X, Y float64
}

// EntityAppear is sent when an entity enters the current map area.
type EntityAppear struct {
	Player PlayerInfo
}

// EntityDisappear is sent when an entity leaves the current map area.
type EntityDisappear struct {
	ID netconfig.EntityID
}

// LoggedIn is produced locally once the server accepts our credentials.
type LoggedIn struct {
	PlayerID netconfig.EntityID
}

// LoggedOut is produced locally when the session ends, for any reason.
type LoggedOut struct {
	Err error
}

func (MapInfo) isEvent()         {}
func (GameState) isEvent()       {}
func (MoveStart) isEvent()       {}
func (MoveStop) isEvent()        {}
func (EntityAppear) isEvent()    {}
func (EntityDisappear) isEvent() {}
func (LoggedIn) isEvent()        {}
func (LoggedOut) isEvent()       {}
