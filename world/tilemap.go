package world

import (
	"image"

	"github.com/yohamta/donburi/features/math"
)

// Tile is one placed static map tile.
type Tile struct {
	ID    int
	Pos   math.Vec2
	Frame image.Image
}

// TileMap is the tile layout of the current map area, bottom layer first.
type TileMap struct {
	Width    int // tiles
	Height   int // tiles
	TileSize int // pixels
	Layers   [][]Tile
}

// PixelSize returns the map extent in world pixels.
func (m *TileMap) PixelSize() (w, h float64) {
	return float64(m.Width * m.TileSize), float64(m.Height * m.TileSize)
}

// TileCount returns how many tiles are placed across all layers.
func (m *TileMap) TileCount() int {
	n := 0
	for _, l := range m.Layers {
		n += len(l)
	}
	return n
}
