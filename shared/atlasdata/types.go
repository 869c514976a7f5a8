// Package atlasdata parses the sprite and tile atlas from a Tiled TMX file.
// It has no dependencies on ebitengine or donburi; pure data only.
package atlasdata

import (
	"image"
	"time"
)

// Atlas maps tile ids and sprite animations onto regions of tileset images.
type Atlas struct {
	TileWidth  int
	TileHeight int

	// Tiles is keyed by global tile id, the same id the server uses in map layers.
	Tiles map[int]TileRef

	// Sprites maps sprite name -> animation name -> animation.
	Sprites map[string]map[string]Animation
}

// TileRef locates one tile inside a tileset image.
type TileRef struct {
	GID   int
	Sheet string // image path inside the asset file system
	Rect  image.Rectangle
}

// Frame is one step of a sprite animation.
type Frame struct {
	Tile     TileRef
	Duration time.Duration
}

type Animation struct {
	Sprite string
	Name   string
	Frames []Frame
}

// FrameDuration is the duration of the first timed frame, or 0 when the atlas gives none.
func (a Animation) FrameDuration() time.Duration {
	for _, f := range a.Frames {
		if f.Duration > 0 {
			return f.Duration
		}
	}
	return 0
}

// SpriteNames lists every sprite in the atlas.
func (a *Atlas) SpriteNames() []string {
	names := make([]string, 0, len(a.Sprites))
	for name := range a.Sprites {
		names = append(names, name)
	}
	return names
}

// Sheets lists every image path referenced by the atlas.
func (a *Atlas) Sheets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range a.Tiles {
		if !seen[t.Sheet] {
			seen[t.Sheet] = true
			out = append(out, t.Sheet)
		}
	}
	return out
}
