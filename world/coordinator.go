package world

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/automoto/retrorealms/components"
	"github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/logging"
	"github.com/automoto/retrorealms/shared/messages"
	"github.com/automoto/retrorealms/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap"
)

var (
	ErrMissingAsset = errors.New("missing asset")
	ErrNotConnected = errors.New("not connected")
)

// SpriteSource builds a fresh set of animation tracks for a sprite name.
type SpriteSource interface {
	Animations(sprite string) (*components.AnimationData, error)
}

// TileSource returns the static frame for a map tile id.
type TileSource interface {
	Tile(id int) (image.Image, error)
}

// Sender delivers outbound protocol messages.
type Sender interface {
	SendMessage(msg any) error
}

// EventSource hands over the server events received since the last call.
type EventSource interface {
	DrainEvents() []messages.Event
}

// InputBuffer holds movement keys the local player is pressing.
type InputBuffer interface {
	ClearKeys()
}

type ConnState int

const (
	Disconnected ConnState = iota
	Connected
)

func (s ConnState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Options are the tunables the coordinator needs from configuration.
type Options struct {
	ViewportW  int
	ViewportH  int
	TileSize   int
	Pace       components.Pace
	CameraEase time.Duration
}

// DefaultOptions reads Options from config.C.
func DefaultOptions() Options {
	return Options{
		ViewportW:  config.C.Width,
		ViewportH:  config.C.Height,
		TileSize:   config.C.TileSize,
		Pace:       components.Pace{Cycle: config.C.WalkCycle, Units: config.C.WalkUnits},
		CameraEase: config.C.CameraEase,
	}
}

// Coordinator applies server events to the entity registry and tile layout, keeps
// moving entities interpolated between updates, and keeps the camera on the local player.
// It is not safe for concurrent use; events and frame ticks must run on one goroutine.
type Coordinator struct {
	registry *Registry
	tiles    TileMap
	camera   *Camera

	sprites SpriteSource
	tileSrc TileSource
	sender  Sender
	input   InputBuffer
	opts    Options
	log     *zap.SugaredLogger

	state      ConnState
	localID    netconfig.EntityID
	primary    netconfig.EntityID
	hasPrimary bool
	lastTick   time.Time
}

type noInput struct{}

func (noInput) ClearKeys() {}

func NewCoordinator(sprites SpriteSource, tiles TileSource, sender Sender, input InputBuffer, opts Options, log *zap.SugaredLogger) *Coordinator {
	if input == nil {
		input = noInput{}
	}
	return &Coordinator{
		registry: NewRegistry(),
		camera:   NewCamera(opts.ViewportW, opts.ViewportH, opts.CameraEase),
		sprites:  sprites,
		tileSrc:  tiles,
		sender:   sender,
		input:    input,
		opts:     opts,
		log:      logging.OrNop(log),
	}
}

// Connect starts accepting events for the session of the local player playerID.
func (c *Coordinator) Connect(playerID netconfig.EntityID) {
	c.state = Connected
	c.localID = playerID
	if _, ok := c.registry.Get(playerID); ok {
		c.setPrimary(playerID)
	}
	c.log.Infow("session started", "player", playerID)
}

// Disconnect stops accepting events and drops all world state.
func (c *Coordinator) Disconnect() {
	if c.state == Connected {
		c.log.Infow("session ended", "player", c.localID, "entities", c.registry.Len())
	}
	c.state = Disconnected
	c.registry.Clear()
	c.tiles = TileMap{}
	c.hasPrimary = false
	c.camera.Reset()
	c.input.ClearKeys()
}

func (c *Coordinator) State() ConnState {
	return c.state
}

// Apply processes one server event to completion.
func (c *Coordinator) Apply(ev messages.Event) {
	switch e := ev.(type) {
	case messages.LoggedIn:
		c.Connect(e.PlayerID)
		return
	case messages.LoggedOut:
		if e.Err != nil {
			c.log.Warnw("logged out", "error", e.Err)
		}
		c.Disconnect()
		return
	}

	if c.state != Connected {
		c.log.Debugw("dropping event while disconnected", "event", fmt.Sprintf("%T", ev))
		return
	}

	switch e := ev.(type) {
	case messages.MapInfo:
		c.applyMapInfo(e)
	case messages.GameState:
		c.applyGameState(e)
	case messages.MoveStart:
		c.applyMoveStart(e)
	case messages.MoveStop:
		c.applyMoveStop(e)
	case messages.EntityAppear:
		c.applyAppear(e)
	case messages.EntityDisappear:
		c.applyDisappear(e)
	default:
		c.log.Warnw("unknown event", "event", fmt.Sprintf("%T", ev))
	}
}

// Pump applies every pending event from src in arrival order and returns how many there were.
func (c *Coordinator) Pump(src EventSource) int {
	evs := src.DrainEvents()
	for _, ev := range evs {
		c.Apply(ev)
	}
	return len(evs)
}

func (c *Coordinator) applyMapInfo(e messages.MapInfo) {
	c.registry.Clear()
	c.hasPrimary = false
	c.camera.Reset()

	c.tiles = TileMap{Width: e.Width, Height: e.Height, TileSize: c.opts.TileSize}
	for i, grid := range e.Layers {
		c.tiles.Layers = append(c.tiles.Layers, c.buildLayer(i, grid, e.Width, e.Height))
	}

	for _, p := range e.Players {
		if err := c.addEntity(p); err != nil {
			c.log.Errorw("cannot add entity", "id", p.ID, "error", err)
		}
	}

	c.log.Infow("map loaded", "width", e.Width, "height", e.Height,
		"layers", len(e.Layers), "tiles", c.tiles.TileCount(), "entities", c.registry.Len())
}

func (c *Coordinator) buildLayer(index int, grid []int, w, h int) []Tile {
	if len(grid) < w*h {
		c.log.Warnw("short tile layer", "layer", index, "have", len(grid), "want", w*h)
	}
	layer := make([]Tile, 0, len(grid))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if i >= len(grid) {
				return layer
			}
			id := grid[i]
			if id <= 0 {
				continue
			}
			frame, err := c.tileSrc.Tile(id)
			if err != nil {
				c.log.Errorw("cannot place tile", "layer", index, "x", x, "y", y, "tile", id, "error", err)
				continue
			}
			layer = append(layer, Tile{
				ID:    id,
				Pos:   math.Vec2{X: float64(x * c.opts.TileSize), Y: float64(y * c.opts.TileSize)},
				Frame: frame,
			})
		}
	}
	return layer
}

func (c *Coordinator) applyGameState(e messages.GameState) {
	for _, p := range e.Players {
		d, ok := c.registry.Get(p.ID)
		if !ok {
			c.log.Warnw("state for unknown entity", "id", p.ID)
			continue
		}
		d.Snap(math.Vec2{X: p.X, Y: p.Y})
		if c.isPrimary(p.ID) {
			c.followPrimary()
		}
	}
}

func (c *Coordinator) applyMoveStart(e messages.MoveStart) {
	d, ok := c.registry.Get(e.ID)
	if !ok {
		c.log.Warnw("move start for unknown entity", "id", e.ID)
		return
	}
	dir, err := netconfig.ParseDirection(e.Dir)
	if err != nil {
		c.log.Warnw("move start with bad direction", "id", e.ID, "error", err)
		return
	}
	d.BeginMotion(dir)
}

func (c *Coordinator) applyMoveStop(e messages.MoveStop) {
	d, ok := c.registry.Get(e.ID)
	if !ok {
		c.log.Warnw("move stop for unknown entity", "id", e.ID)
		return
	}
	d.EndMotion(math.Vec2{X: e.X, Y: e.Y})
	if c.isPrimary(e.ID) {
		c.input.ClearKeys()
		c.followPrimary()
	}
}

func (c *Coordinator) applyAppear(e messages.EntityAppear) {
	if _, ok := c.registry.Get(e.Player.ID); ok {
		c.log.Warnw("entity redefined", "id", e.Player.ID)
		c.removeEntity(e.Player.ID)
	}
	if err := c.addEntity(e.Player); err != nil {
		c.log.Errorw("cannot add entity", "id", e.Player.ID, "error", err)
	}
}

func (c *Coordinator) applyDisappear(e messages.EntityDisappear) {
	if !c.removeEntity(e.ID) {
		c.log.Warnw("disappear for unknown entity", "id", e.ID)
	}
}

func (c *Coordinator) addEntity(p messages.PlayerInfo) error {
	anim, err := c.sprites.Animations(p.Sprite)
	if err != nil {
		return fmt.Errorf("%w: sprite %q: %v", ErrMissingAsset, p.Sprite, err)
	}
	for _, name := range config.RequiredSpriteAnimations() {
		if !anim.Has(name) {
			return fmt.Errorf("%w: sprite %q has no %q animation", ErrMissingAsset, p.Sprite, name)
		}
	}

	dir, err := netconfig.ParseDirection(p.Dir)
	if err != nil {
		c.log.Warnw("entity without direction, showing idle", "id", p.ID, "dir", p.Dir)
		anim.SetAnimation(config.IdleAnimation)
	} else {
		anim.SetAnimation(config.WalkAnimation(dir))
	}
	anim.Track().Stop()

	d := components.DrawableData{
		Sprite:      p.Sprite,
		DisplayName: p.Username,
		Position:    math.Vec2{X: p.X, Y: p.Y},
		Direction:   dir,
		Pace:        c.opts.Pace,
		Animation:   anim,
	}
	if err := c.registry.Insert(p.ID, d); err != nil {
		return err
	}

	if c.state == Connected && p.ID == c.localID {
		c.setPrimary(p.ID)
	}
	return nil
}

func (c *Coordinator) removeEntity(id netconfig.EntityID) bool {
	if _, ok := c.registry.Remove(id); !ok {
		return false
	}
	if c.isPrimary(id) {
		c.hasPrimary = false
		c.input.ClearKeys()
	}
	return true
}

func (c *Coordinator) setPrimary(id netconfig.EntityID) {
	c.primary = id
	c.hasPrimary = true
	if d, ok := c.registry.Get(id); ok {
		w, h := c.tiles.PixelSize()
		c.camera.Jump(d.Position, w, h)
	}
}

func (c *Coordinator) isPrimary(id netconfig.EntityID) bool {
	return c.hasPrimary && c.primary == id
}

func (c *Coordinator) followPrimary() {
	d, ok := c.registry.Get(c.primary)
	if !ok {
		return
	}
	w, h := c.tiles.PixelSize()
	c.camera.CenterOn(d.Position, w, h)
}

// Tick interpolates every moving entity to now and keeps the camera on the primary entity.
// A failing entity is logged and skipped; the rest still tick.
func (c *Coordinator) Tick(now time.Time) {
	if !c.lastTick.IsZero() {
		c.camera.Update(now.Sub(c.lastTick))
	}
	c.lastTick = now

	primaryMoved := false
	c.registry.Each(func(d *components.DrawableData) {
		if c.tickEntity(d, now) && c.isPrimary(d.ID) {
			primaryMoved = true
		}
	})
	if primaryMoved {
		c.followPrimary()
	}
}

func (c *Coordinator) tickEntity(d *components.DrawableData, now time.Time) (moved bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("entity tick failed", "id", d.ID, "panic", r)
			moved = false
		}
	}()
	return d.Tick(now)
}

// RequestMoveStart forwards the local player's intent to move. Legality is the server's call.
func (c *Coordinator) RequestMoveStart(dir netconfig.Direction) error {
	if c.state != Connected || c.sender == nil {
		return ErrNotConnected
	}
	return c.sender.SendMessage(messages.MoveStartRequest{Dir: dir.String()})
}

// RequestMoveStop forwards the local player's intent to stop.
func (c *Coordinator) RequestMoveStop() error {
	if c.state != Connected || c.sender == nil {
		return ErrNotConnected
	}
	return c.sender.SendMessage(messages.MoveStopRequest{})
}

// Entity looks up an entity for the duration of one operation.
func (c *Coordinator) Entity(id netconfig.EntityID) (*components.DrawableData, bool) {
	return c.registry.Get(id)
}

// Each visits every entity, e.g. to draw it.
func (c *Coordinator) Each(fn func(*components.DrawableData)) {
	c.registry.Each(fn)
}

// DrawOrder returns every entity in the order it should be drawn.
func (c *Coordinator) DrawOrder() []*components.DrawableData {
	return c.registry.DrawOrder()
}

func (c *Coordinator) EntityCount() int {
	return c.registry.Len()
}

func (c *Coordinator) EntityIDs() []netconfig.EntityID {
	return c.registry.IDs()
}

// Primary returns the id of the local player's entity, if it is on the map.
func (c *Coordinator) Primary() (netconfig.EntityID, bool) {
	return c.primary, c.hasPrimary
}

func (c *Coordinator) LocalPlayer() netconfig.EntityID {
	return c.localID
}

// World is the donburi world holding the entities.
func (c *Coordinator) World() donburi.World {
	return c.registry.World()
}

func (c *Coordinator) Tiles() *TileMap {
	return &c.tiles
}

func (c *Coordinator) Camera() *Camera {
	return c.camera
}
