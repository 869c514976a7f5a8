package components

import (
	"time"

	"github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
)

// Pace converts elapsed time into distance: Units pixels per Cycle, matching
// the server's movement cadence.
type Pace struct {
	Cycle time.Duration
	Units float64
}

// Distance returns how far an entity walks in elapsed.
func (p Pace) Distance(elapsed time.Duration) float64 {
	if p.Cycle <= 0 {
		return 0
	}
	return float64(elapsed) / float64(p.Cycle) * p.Units
}

// DrawableData is a server entity as the client renders it: animation state plus
// a visual estimate of its position, corrected whenever the server says so.
type DrawableData struct {
	ID          netconfig.EntityID
	Sprite      string
	DisplayName string

	Position  math.Vec2
	Direction netconfig.Direction
	Moving    bool

	// LastTick is zero until the first tick of the current motion segment.
	LastTick time.Time

	Pace      Pace
	Animation *AnimationData
}

// BeginMotion starts walking in dir. Repeating the current direction while already
// moving is ignored so the time base is not reset.
func (d *DrawableData) BeginMotion(dir netconfig.Direction) {
	if d.Moving && d.Direction == dir {
		return
	}
	d.Moving = true
	d.Direction = dir
	d.LastTick = time.Time{}
	d.Animation.SetAnimation(config.WalkAnimation(dir))
	d.Animation.Track().Play()
}

// EndMotion stops walking and snaps to the authoritative position pos.
func (d *DrawableData) EndMotion(pos math.Vec2) {
	d.Moving = false
	d.Position = pos
	d.LastTick = time.Time{}
	d.Animation.Track().Stop()
}

// Snap overrides the interpolated position without touching motion state.
func (d *DrawableData) Snap(pos math.Vec2) {
	d.Position = pos
}

// Tick interpolates the position for this frame and reports whether it changed.
// The first tick of a motion segment only records the time.
func (d *DrawableData) Tick(now time.Time) bool {
	if !d.Moving {
		return false
	}
	if d.LastTick.IsZero() {
		d.LastTick = now
		return false
	}

	elapsed := now.Sub(d.LastTick)
	d.LastTick = now
	d.Animation.Track().Advance(now)
	if elapsed <= 0 {
		return false
	}

	dist := d.Pace.Distance(elapsed)
	dx, dy := d.Direction.Unit()
	d.Position.X += dx * dist
	d.Position.Y += dy * dist
	return dist != 0
}

var Drawable = donburi.NewComponentType[DrawableData]()
