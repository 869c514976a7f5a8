package config

import "github.com/automoto/retrorealms/shared/netconfig"

// Animation names every sprite in the atlas must provide.
const (
	IdleAnimation = "idle"
	walkPrefix    = "walk-"
)

// WalkAnimation returns the track name used while moving in dir, e.g. "walk-up".
func WalkAnimation(dir netconfig.Direction) string {
	return walkPrefix + dir.String()
}

// RequiredSpriteAnimations is the per-sprite asset contract: four walk tracks and an idle frame.
func RequiredSpriteAnimations() []string {
	names := make([]string, 0, len(netconfig.Directions)+1)
	for _, d := range netconfig.Directions {
		names = append(names, WalkAnimation(d))
	}
	return append(names, IdleAnimation)
}
