package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"time"

	"github.com/automoto/retrorealms/assets/animations"
	"github.com/automoto/retrorealms/components"
	"github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/logging"
	"github.com/automoto/retrorealms/shared/atlasdata"
	"go.uber.org/zap"
)

var (
	ErrUnknownTile   = errors.New("unknown tile")
	ErrUnknownSprite = errors.New("unknown sprite")
)

// Sheet is a decoded tileset image that frames are cut from.
// *ebiten.Image satisfies it, as do the standard library image types.
type Sheet interface {
	SubImage(r image.Rectangle) image.Image
}

// DecodeFunc turns encoded image bytes into a Sheet.
type DecodeFunc func(data []byte) (Sheet, error)

// DecodeImage decodes a PNG into memory. It is the decoder used when none is given.
func DecodeImage(data []byte) (Sheet, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	sheet, ok := img.(Sheet)
	if !ok {
		return nil, fmt.Errorf("image type %T cannot be sliced", img)
	}
	return sheet, nil
}

// Library serves tile and sprite frames cut from the atlas images.
type Library struct {
	atlas  *atlasdata.Atlas
	sheets map[string]Sheet

	frameCache   map[int]image.Image
	defaultFrame time.Duration
	log          *zap.SugaredLogger
}

// LoadLibrary parses the atlas at atlasPath in fsys, checks that every sprite has the
// animations the client needs, and decodes all referenced images.
func LoadLibrary(fsys fs.FS, atlasPath string, decode DecodeFunc, log *zap.SugaredLogger) (*Library, error) {
	log = logging.OrNop(log)
	if decode == nil {
		decode = DecodeImage
	}

	atlas, err := atlasdata.Load(fsys, atlasPath)
	if err != nil {
		return nil, err
	}
	if err := atlas.Validate(config.RequiredSpriteAnimations()); err != nil {
		return nil, err
	}

	l := &Library{
		atlas:        atlas,
		sheets:       make(map[string]Sheet),
		frameCache:   make(map[int]image.Image),
		defaultFrame: config.C.AnimationFrame,
		log:          log,
	}
	for _, p := range atlas.Sheets() {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", p, err)
		}
		sheet, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode image %s: %w", p, err)
		}
		l.sheets[p] = sheet
	}

	log.Infow("atlas loaded", "path", atlasPath, "tiles", len(atlas.Tiles),
		"sprites", len(atlas.Sprites), "sheets", len(l.sheets))
	return l, nil
}

// Tile returns the frame for a map tile id.
func (l *Library) Tile(id int) (image.Image, error) {
	ref, ok := l.atlas.Tiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTile, id)
	}
	return l.frame(ref), nil
}

// Animations builds a fresh set of tracks for sprite, so each entity animates independently.
// Frame images are shared.
func (l *Library) Animations(sprite string) (*components.AnimationData, error) {
	defs, ok := l.atlas.Sprites[sprite]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSprite, sprite)
	}

	tracks := make([]*animations.Track, 0, len(defs))
	for name, def := range defs {
		frames := make([]image.Image, len(def.Frames))
		for i, f := range def.Frames {
			frames[i] = l.frame(f.Tile)
		}
		d := def.FrameDuration()
		if d <= 0 {
			d = l.defaultFrame
		}
		tr, err := animations.NewTrack(name, frames, d)
		if err != nil {
			return nil, fmt.Errorf("sprite %q: %w", sprite, err)
		}
		tracks = append(tracks, tr)
	}
	return components.NewAnimationData(config.IdleAnimation, tracks...)
}

func (l *Library) frame(ref atlasdata.TileRef) image.Image {
	if img, ok := l.frameCache[ref.GID]; ok {
		return img
	}
	img := l.sheets[ref.Sheet].SubImage(ref.Rect)
	l.frameCache[ref.GID] = img
	return img
}
