package animations

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrInvalidAnimation is returned when a track is built without frames or timing.
var ErrInvalidAnimation = errors.New("invalid animation")

// Track is an ordered, looping sequence of frames driven by wall-clock time.
type Track struct {
	Name          string
	FrameDuration time.Duration

	frames          []image.Image
	frame           int
	playing         bool
	lastFrameChange time.Time
}

// NewTrack builds a stopped track showing its first frame.
func NewTrack(name string, frames []image.Image, frameDuration time.Duration) (*Track, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %q has no frames", ErrInvalidAnimation, name)
	}
	if frameDuration <= 0 {
		return nil, fmt.Errorf("%w: %q has frame duration %v", ErrInvalidAnimation, name, frameDuration)
	}
	return &Track{
		Name:          name,
		FrameDuration: frameDuration,
		frames:        frames,
	}, nil
}

// Play marks the track active. The current frame is kept.
func (t *Track) Play() {
	t.playing = true
}

// Stop marks the track inactive and rewinds it to the first frame.
func (t *Track) Stop() {
	t.playing = false
	t.frame = 0
}

// Reset shows the first frame without changing whether the track is playing.
func (t *Track) Reset() {
	t.frame = 0
}

// Advance moves to the next frame once FrameDuration has passed since the last change.
// At most one frame is advanced per call, however long the gap.
func (t *Track) Advance(now time.Time) {
	if !t.playing {
		return
	}
	if now.Sub(t.lastFrameChange) < t.FrameDuration {
		return
	}
	t.frame = (t.frame + 1) % len(t.frames)
	t.lastFrameChange = now
}

func (t *Track) Frame() image.Image {
	return t.frames[t.frame]
}

func (t *Track) Index() int {
	return t.frame
}

func (t *Track) Len() int {
	return len(t.frames)
}

func (t *Track) Playing() bool {
	return t.playing
}
