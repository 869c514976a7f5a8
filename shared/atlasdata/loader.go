package atlasdata

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/lafriks/go-tiled"
)

var (
	ErrIncompleteSprite = errors.New("incomplete sprite")
	ErrBadAtlas         = errors.New("bad atlas")
)

// Tileset tile properties marking a sprite animation.
const (
	PropSprite    = "sprite"
	PropAnimation = "animation"
)

// Load parses a TMX file and returns the atlas described by its tilesets. It takes an
// fs.FS so callers can pass os.DirFS or an embedded file system.
func Load(fsys fs.FS, tmxPath string) (*Atlas, error) {
	atlasMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	atlas := &Atlas{
		TileWidth:  atlasMap.TileWidth,
		TileHeight: atlasMap.TileHeight,
		Tiles:      make(map[int]TileRef),
		Sprites:    make(map[string]map[string]Animation),
	}

	baseDir := path.Dir(tmxPath)
	for _, ts := range atlasMap.Tilesets {
		if ts.Image == nil {
			return nil, fmt.Errorf("%w: tileset %q has no image", ErrBadAtlas, ts.Name)
		}
		if ts.Columns <= 0 {
			return nil, fmt.Errorf("%w: tileset %q has no columns", ErrBadAtlas, ts.Name)
		}
		sheet := path.Join(baseDir, ts.Image.Source)

		ref := func(localID uint32) TileRef {
			return TileRef{
				GID:   int(ts.FirstGID + localID),
				Sheet: sheet,
				Rect:  ts.GetTileRect(localID),
			}
		}

		for id := 0; id < ts.TileCount; id++ {
			r := ref(uint32(id))
			atlas.Tiles[r.GID] = r
		}

		for _, tile := range ts.Tiles {
			sprite := tile.Properties.GetString(PropSprite)
			name := tile.Properties.GetString(PropAnimation)
			if sprite == "" || name == "" {
				continue
			}

			anim := Animation{Sprite: sprite, Name: name}
			if len(tile.Animation) == 0 {
				anim.Frames = []Frame{{Tile: ref(tile.ID)}}
			}
			for _, f := range tile.Animation {
				anim.Frames = append(anim.Frames, Frame{
					Tile:     ref(f.TileID),
					Duration: time.Duration(f.Duration) * time.Millisecond,
				})
			}

			if atlas.Sprites[sprite] == nil {
				atlas.Sprites[sprite] = make(map[string]Animation)
			}
			if _, dup := atlas.Sprites[sprite][name]; dup {
				return nil, fmt.Errorf("%w: sprite %q defines %q twice", ErrBadAtlas, sprite, name)
			}
			atlas.Sprites[sprite][name] = anim
		}
	}

	return atlas, nil
}

// Validate checks that every sprite provides each of the required animations.
func (a *Atlas) Validate(required []string) error {
	names := a.SpriteNames()
	sort.Strings(names)
	for _, sprite := range names {
		var missing []string
		for _, name := range required {
			if _, ok := a.Sprites[sprite][name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %q lacks %s", ErrIncompleteSprite, sprite, strings.Join(missing, ", "))
		}
	}
	return nil
}
