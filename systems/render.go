package systems

import (
	"image"
	"image/color"

	cfg "github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/fonts"
	"github.com/automoto/retrorealms/world"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/yohamta/donburi/ecs"
	"golang.org/x/image/font"
)

var (
	drawOp = &ebiten.DrawImageOptions{}
)

// Tiles and sprites within this many pixels outside the screen are still drawn,
// so nothing pops in at the edges.
const cullPadding = 64.0

// NewRenderSystem returns a renderer that draws the tile layers, then every entity
// from top to bottom with its name above it, all shifted by the camera view.
func NewRenderSystem(coord *world.Coordinator) func(*ecs.ECS, *ebiten.Image) {
	return func(_ *ecs.ECS, screen *ebiten.Image) {
		view := coord.Camera().View()
		w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
		visible := func(x, y float64, img image.Image) bool {
			b := img.Bounds()
			return x+float64(b.Dx()) >= -cullPadding && x <= float64(w)+cullPadding &&
				y+float64(b.Dy()) >= -cullPadding && y <= float64(h)+cullPadding
		}

		for _, layer := range coord.Tiles().Layers {
			for _, tile := range layer {
				x, y := tile.Pos.X-view.X, tile.Pos.Y-view.Y
				if visible(x, y, tile.Frame) {
					drawFrame(screen, tile.Frame, x, y)
				}
			}
		}

		localID, hasLocal := coord.Primary()
		face := fonts.NameTag.Get()
		for _, d := range coord.DrawOrder() {
			frame := d.Animation.Frame()
			x, y := d.Position.X-view.X, d.Position.Y-view.Y
			if !visible(x, y, frame) {
				continue
			}
			drawFrame(screen, frame, x, y)

			if d.DisplayName == "" {
				continue
			}
			clr := cfg.UI.NameTagColor
			if hasLocal && d.ID == localID {
				clr = cfg.UI.LocalNameColor
			}
			drawNameTag(screen, face, d.DisplayName, x+float64(frame.Bounds().Dx())/2, y-cfg.UI.NameTagOffsetY, clr)
		}
	}
}

func drawFrame(screen *ebiten.Image, frame image.Image, x, y float64) {
	img, ok := frame.(*ebiten.Image)
	if !ok {
		return
	}
	drawOp.GeoM.Reset()
	drawOp.GeoM.Translate(x, y)
	screen.DrawImage(img, drawOp)
}

// drawNameTag centers label horizontally on cx with its baseline at y, outlined for contrast.
func drawNameTag(screen *ebiten.Image, face font.Face, label string, cx, y float64, clr color.Color) {
	width := font.MeasureString(face, label).Round()
	x := int(cx) - width/2
	by := int(y)
	for _, o := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		text.Draw(screen, label, face, x+o[0], by+o[1], cfg.UI.NameTagOutline)
	}
	text.Draw(screen, label, face, x, by, clr)
}
