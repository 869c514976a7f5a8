package systems

import (
	"image/color"

	cfg "github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/fonts"
	"github.com/automoto/retrorealms/world"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

const (
	hudMargin     = 4
	hudLineHeight = 14
)

// NewHUDSystem returns a renderer for the session overlay in the top-left corner.
// status is called every frame.
func NewHUDSystem(status func() world.Status) func(*ecs.ECS, *ebiten.Image) {
	return func(_ *ecs.ECS, screen *ebiten.Image) {
		s := status()
		lines := s.Lines(cfg.C.Debug)
		face := fonts.HUD.Get()

		vector.DrawFilledRect(screen, 0, 0, float32(screen.Bounds().Dx()),
			float32(len(lines)*hudLineHeight+hudMargin), color.RGBA{A: 0x80}, false)

		var clr color.Color = cfg.UI.HUDTextColor
		if s.Err != nil {
			clr = cfg.UI.HUDWarnColor
		}
		for i, line := range lines {
			text.Draw(screen, line, face, hudMargin, hudMargin+(i+1)*hudLineHeight-4, clr)
		}
	}
}
