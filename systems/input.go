package systems

import (
	"time"

	"github.com/automoto/retrorealms/components"
	"github.com/automoto/retrorealms/shared/netconfig"
	"github.com/automoto/retrorealms/world"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi/ecs"
)

// Keys mapped to each movement direction. Arrows and WASD both work.
var directionKeys = map[netconfig.Direction][]ebiten.Key{
	netconfig.Up:    {ebiten.KeyArrowUp, ebiten.KeyW},
	netconfig.Down:  {ebiten.KeyArrowDown, ebiten.KeyS},
	netconfig.Left:  {ebiten.KeyArrowLeft, ebiten.KeyA},
	netconfig.Right: {ebiten.KeyArrowRight, ebiten.KeyD},
}

var logoutKeys = []ebiten.Key{ebiten.KeyEscape}

// NewInputSystem returns an ECS system that records key presses in keys and
// forwards changes of the held direction through intent. Keys are tracked by
// press and release edges, so a key still down after the buffer was cleared
// must be pressed again.
func NewInputSystem(keys *components.KeyBuffer, intent *world.Intent, onLogout func()) func(*ecs.ECS) {
	return func(_ *ecs.ECS) {
		for _, k := range logoutKeys {
			if inpututil.IsKeyJustPressed(k) && onLogout != nil {
				onLogout()
				return
			}
		}

		for _, dir := range netconfig.Directions {
			for _, k := range directionKeys[dir] {
				if inpututil.IsKeyJustPressed(k) {
					keys.Press(dir)
				}
				if inpututil.IsKeyJustReleased(k) {
					keys.Release(dir)
				}
			}
		}

		dir, held := keys.Current()
		intent.Sync(time.Now(), dir, held)
	}
}
