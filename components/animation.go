package components

import (
	"fmt"
	"image"

	"github.com/automoto/retrorealms/assets/animations"
)

// AnimationData is the set of named tracks a sprite owns plus the one being shown.
type AnimationData struct {
	Tracks  map[string]*animations.Track
	Current string
}

// NewAnimationData groups tracks by name. The first track shown is initial.
func NewAnimationData(initial string, tracks ...*animations.Track) (*AnimationData, error) {
	a := &AnimationData{Tracks: make(map[string]*animations.Track, len(tracks))}
	for _, tr := range tracks {
		a.Tracks[tr.Name] = tr
	}
	if _, ok := a.Tracks[initial]; !ok {
		return nil, fmt.Errorf("no track named %q", initial)
	}
	a.Current = initial
	return a, nil
}

// Has reports whether a track named name exists.
func (a *AnimationData) Has(name string) bool {
	_, ok := a.Tracks[name]
	return ok
}

// SetAnimation switches the shown track. Switching to the current one is a no-op,
// so redundant server updates never restart a walk cycle. The previous track is
// stopped and the new one shows its first frame.
func (a *AnimationData) SetAnimation(name string) {
	if a.Current == name {
		return
	}
	next, ok := a.Tracks[name]
	if !ok {
		panic(fmt.Sprintf("no animation %q", name))
	}
	if prev, ok := a.Tracks[a.Current]; ok {
		prev.Stop()
	}
	next.Reset()
	a.Current = name
}

// Track returns the track being shown.
func (a *AnimationData) Track() *animations.Track {
	return a.Tracks[a.Current]
}

// Frame returns the image to draw this frame.
func (a *AnimationData) Frame() image.Image {
	return a.Track().Frame()
}
