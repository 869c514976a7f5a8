package world

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"github.com/automoto/retrorealms/assets/animations"
	"github.com/automoto/retrorealms/components"
	"github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/shared/messages"
	"github.com/automoto/retrorealms/shared/netconfig"
	"github.com/yohamta/donburi/features/math"
	"go.uber.org/zap/zaptest"
)

type fakeSprites struct {
	// missing names sprites that lack their idle animation.
	missing map[string]bool
}

func (f fakeSprites) Animations(sprite string) (*components.AnimationData, error) {
	if sprite == "unknown" {
		return nil, fmt.Errorf("no sprite %q", sprite)
	}
	var tracks []*animations.Track
	for _, name := range config.RequiredSpriteAnimations() {
		if f.missing[sprite] && name == config.IdleAnimation {
			continue
		}
		frames := make([]image.Image, 4)
		for i := range frames {
			frames[i] = image.NewRGBA(image.Rect(0, 0, 32, 32))
		}
		tr, err := animations.NewTrack(name, frames, 100*time.Millisecond)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, tr)
	}
	return components.NewAnimationData(config.WalkAnimation(netconfig.Down), tracks...)
}

type fakeTiles struct{}

func (fakeTiles) Tile(id int) (image.Image, error) {
	if id == 99 {
		return nil, errors.New("no such tile")
	}
	return image.NewRGBA(image.Rect(0, 0, 32, 32)), nil
}

type fakeSender struct {
	sent []any
	err  error
}

func (f *fakeSender) SendMessage(msg any) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeKeys struct {
	cleared int
}

func (f *fakeKeys) ClearKeys() {
	f.cleared++
}

var testOptions = Options{
	ViewportW:  640,
	ViewportH:  480,
	TileSize:   32,
	Pace:       components.Pace{Cycle: 100 * time.Millisecond, Units: 8},
	CameraEase: 40 * time.Millisecond,
}

type harness struct {
	*Coordinator
	sender *fakeSender
	keys   *fakeKeys
}

func newHarness(t *testing.T, local netconfig.EntityID) harness {
	t.Helper()
	sender := &fakeSender{}
	keys := &fakeKeys{}
	c := NewCoordinator(fakeSprites{missing: map[string]bool{"broken": true}}, fakeTiles{}, sender, keys,
		testOptions, zaptest.NewLogger(t).Sugar())
	c.Apply(messages.LoggedIn{PlayerID: local})
	return harness{Coordinator: c, sender: sender, keys: keys}
}

func grid(w, h, id int) []int {
	g := make([]int, w*h)
	for i := range g {
		g[i] = id
	}
	return g
}

func player(id netconfig.EntityID, x, y float64, dir string) messages.PlayerInfo {
	return messages.PlayerInfo{
		ID:       id,
		Username: fmt.Sprintf("player%d", id),
		Sprite:   "knight",
		X:        x,
		Y:        y,
		Dir:      dir,
	}
}

func mustEntity(t *testing.T, c *Coordinator, id netconfig.EntityID) *components.DrawableData {
	t.Helper()
	d, ok := c.Entity(id)
	if !ok {
		t.Fatalf("entity %d not found", id)
	}
	return d
}

func TestWalkAndStopScenario(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{
		Width:   10,
		Height:  10,
		Layers:  [][]int{grid(10, 10, 1)},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down")},
	})

	h.Apply(messages.MoveStart{ID: 1, Dir: "right"})
	t0 := time.Unix(10_000, 0)
	h.Tick(t0)
	d := mustEntity(t, h.Coordinator, 1)
	if d.Position != (math.Vec2{}) {
		t.Fatalf("first tick moved entity to %v", d.Position)
	}

	h.Tick(t0.Add(200 * time.Millisecond))
	if d.Position.X != 16 || d.Position.Y != 0 {
		t.Fatalf("position after 200ms = %v, want (16, 0)", d.Position)
	}

	h.Apply(messages.MoveStop{ID: 1, X: 16, Y: 0})
	if d.Position != (math.Vec2{X: 16, Y: 0}) {
		t.Fatalf("position after stop = %v, want (16, 0)", d.Position)
	}
	tr := d.Animation.Track()
	if tr.Playing() || tr.Index() != 0 {
		t.Fatalf("track playing=%v index=%d after stop", tr.Playing(), tr.Index())
	}
	if d.Animation.Current != "walk-right" {
		t.Fatalf("animation = %q, want walk-right", d.Animation.Current)
	}
	if h.keys.cleared == 0 {
		t.Fatal("stopping the local player did not clear held keys")
	}
}

func TestMapInfoIsFullReset(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{
		Width: 4, Height: 4,
		Layers:  [][]int{grid(4, 4, 1)},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down"), player(2, 32, 32, "up"), player(3, 64, 64, "left")},
	})
	h.Apply(messages.MoveStart{ID: 2, Dir: "up"})

	h.Apply(messages.MapInfo{
		Width: 2, Height: 2,
		Layers:  [][]int{grid(2, 2, 1), {0, 2, 0, 0}},
		Players: []messages.PlayerInfo{player(2, 0, 32, "right"), player(4, 32, 0, "down")},
	})

	ids := h.EntityIDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 4 {
		t.Fatalf("entities after reset = %v, want [2 4]", ids)
	}
	d := mustEntity(t, h.Coordinator, 2)
	if d.Moving || d.Position != (math.Vec2{X: 0, Y: 32}) || d.Direction != netconfig.Right {
		t.Fatalf("entity 2 carried state across reset: %+v", d)
	}
	if _, ok := h.Primary(); ok {
		t.Fatal("primary kept although the local player left the map")
	}

	tiles := h.Tiles()
	if tiles.Width != 2 || tiles.Height != 2 || len(tiles.Layers) != 2 {
		t.Fatalf("tile map = %dx%d with %d layers", tiles.Width, tiles.Height, len(tiles.Layers))
	}
	if len(tiles.Layers[0]) != 4 || len(tiles.Layers[1]) != 1 {
		t.Fatalf("layer sizes = %d, %d, want 4, 1", len(tiles.Layers[0]), len(tiles.Layers[1]))
	}
	if got := tiles.Layers[1][0].Pos; got != (math.Vec2{X: 32, Y: 0}) {
		t.Fatalf("tile position = %v, want (32, 0)", got)
	}
}

func TestMapInfoSkipsUnknownTiles(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{
		Width: 2, Height: 1,
		Layers:  [][]int{{99, 1}},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down")},
	})
	if n := h.Tiles().TileCount(); n != 1 {
		t.Fatalf("tile count = %d, want 1", n)
	}
	if h.EntityCount() != 1 {
		t.Fatal("entities dropped because of a bad tile")
	}
}

func TestUnknownIDsAreIgnored(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{
		Width: 2, Height: 2,
		Layers:  [][]int{grid(2, 2, 1)},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down")},
	})

	h.Apply(messages.MoveStart{ID: 42, Dir: "up"})
	h.Apply(messages.MoveStop{ID: 42, X: 5, Y: 5})
	h.Apply(messages.EntityDisappear{ID: 42})
	h.Apply(messages.GameState{Players: []messages.PlayerInfo{player(42, 1, 1, "up"), player(1, 32, 0, "down")}})

	if h.EntityCount() != 1 {
		t.Fatalf("entity count = %d, want 1", h.EntityCount())
	}
	if d := mustEntity(t, h.Coordinator, 1); d.Position != (math.Vec2{X: 32, Y: 0}) {
		t.Fatalf("GameState did not snap known entity: %v", d.Position)
	}
}

func TestAppearAndDisappear(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{Width: 2, Height: 2, Layers: [][]int{grid(2, 2, 1)}})

	h.Apply(messages.EntityAppear{Player: player(7, 32, 0, "left")})
	d := mustEntity(t, h.Coordinator, 7)
	if d.DisplayName != "player7" || d.Direction != netconfig.Left || d.Moving {
		t.Fatalf("appeared entity = %+v", d)
	}

	// Reappearing replaces the old entity rather than duplicating it.
	h.Apply(messages.EntityAppear{Player: player(7, 0, 32, "up")})
	if h.EntityCount() != 1 {
		t.Fatalf("entity count = %d after reappear", h.EntityCount())
	}
	if d := mustEntity(t, h.Coordinator, 7); d.Position != (math.Vec2{X: 0, Y: 32}) {
		t.Fatalf("reappeared entity at %v", d.Position)
	}

	h.Apply(messages.EntityDisappear{ID: 7})
	if _, ok := h.Entity(7); ok {
		t.Fatal("entity still present after disappear")
	}
}

func TestLocalPlayerBecomesPrimary(t *testing.T) {
	h := newHarness(t, 3)
	h.Apply(messages.MapInfo{
		Width: 100, Height: 100,
		Layers:  [][]int{grid(100, 100, 1)},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down"), player(3, 1600, 1600, "down")},
	})
	id, ok := h.Primary()
	if !ok || id != 3 {
		t.Fatalf("primary = %d, %v, want 3", id, ok)
	}
	if want := (math.Vec2{X: 1280, Y: 1360}); h.Camera().Offset != want || h.Camera().View() != want {
		t.Fatalf("camera offset %v view %v, want %v", h.Camera().Offset, h.Camera().View(), want)
	}

	h.Apply(messages.MoveStart{ID: 3, Dir: "right"})
	t0 := time.Unix(10_000, 0)
	h.Tick(t0)
	h.Tick(t0.Add(100 * time.Millisecond))
	if want := (math.Vec2{X: 1288, Y: 1360}); h.Camera().Offset != want {
		t.Fatalf("camera did not follow: %v, want %v", h.Camera().Offset, want)
	}

	before := h.keys.cleared
	h.Apply(messages.EntityDisappear{ID: 3})
	if _, ok := h.Primary(); ok {
		t.Fatal("primary kept after its entity disappeared")
	}
	if h.keys.cleared == before {
		t.Fatal("keys not cleared when the local player disappeared")
	}
}

func TestMissingAnimationRejectsEntity(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{Width: 1, Height: 1, Layers: [][]int{{1}}})

	bad := player(5, 0, 0, "down")
	bad.Sprite = "broken"
	err := h.addEntity(bad)
	if !errors.Is(err, ErrMissingAsset) {
		t.Fatalf("addEntity error = %v, want ErrMissingAsset", err)
	}

	unknown := player(6, 0, 0, "down")
	unknown.Sprite = "unknown"
	if err := h.addEntity(unknown); !errors.Is(err, ErrMissingAsset) {
		t.Fatalf("addEntity error = %v, want ErrMissingAsset", err)
	}
	if h.EntityCount() != 0 {
		t.Fatalf("entity count = %d, want 0", h.EntityCount())
	}
}

func TestBadDirectionShowsIdle(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{Width: 1, Height: 1, Layers: [][]int{{1}}})
	h.Apply(messages.EntityAppear{Player: player(2, 0, 0, "sideways")})

	d := mustEntity(t, h.Coordinator, 2)
	if d.Animation.Current != config.IdleAnimation {
		t.Fatalf("animation = %q, want idle", d.Animation.Current)
	}
	if d.Direction != netconfig.Down {
		t.Fatalf("direction = %v, want down", d.Direction)
	}

	h.Apply(messages.MoveStart{ID: 2, Dir: "sideways"})
	if d.Moving {
		t.Fatal("bad direction started motion")
	}
	h.Apply(messages.MoveStart{ID: 2, Dir: "up"})
	if !d.Moving || d.Animation.Current != "walk-up" {
		t.Fatalf("moving=%v animation=%q", d.Moving, d.Animation.Current)
	}
}

func TestTickSurvivesBrokenEntity(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{
		Width: 4, Height: 4,
		Layers:  [][]int{grid(4, 4, 1)},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down"), player(2, 0, 0, "down")},
	})
	h.Apply(messages.MoveStart{ID: 1, Dir: "down"})
	h.Apply(messages.MoveStart{ID: 2, Dir: "down"})

	broken := mustEntity(t, h.Coordinator, 1)
	broken.Animation.Current = "gone"

	t0 := time.Unix(10_000, 0)
	h.Tick(t0)
	h.Tick(t0.Add(100 * time.Millisecond))

	if d := mustEntity(t, h.Coordinator, 2); d.Position.Y != 8 {
		t.Fatalf("healthy entity at %v, want y=8", d.Position)
	}
}

func TestEventsIgnoredWhileDisconnected(t *testing.T) {
	c := NewCoordinator(fakeSprites{}, fakeTiles{}, nil, nil, testOptions, zaptest.NewLogger(t).Sugar())
	c.Apply(messages.MapInfo{
		Width: 1, Height: 1, Layers: [][]int{{1}},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down")},
	})
	if c.EntityCount() != 0 || c.Tiles().TileCount() != 0 {
		t.Fatal("map applied before login")
	}
	if err := c.RequestMoveStart(netconfig.Up); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("RequestMoveStart error = %v, want ErrNotConnected", err)
	}
}

func TestLoggedOutClearsWorld(t *testing.T) {
	h := newHarness(t, 1)
	h.Apply(messages.MapInfo{
		Width: 2, Height: 2,
		Layers:  [][]int{grid(2, 2, 1)},
		Players: []messages.PlayerInfo{player(1, 0, 0, "down"), player(2, 32, 32, "down")},
	})
	h.Apply(messages.LoggedOut{Err: errors.New("connection reset")})

	if h.State() != Disconnected {
		t.Fatalf("state = %v, want disconnected", h.State())
	}
	if h.EntityCount() != 0 || h.Tiles().TileCount() != 0 {
		t.Fatal("world state kept after logout")
	}
	if _, ok := h.Primary(); ok {
		t.Fatal("primary kept after logout")
	}
	if err := h.RequestMoveStop(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("RequestMoveStop error = %v, want ErrNotConnected", err)
	}
}

func TestMoveRequests(t *testing.T) {
	h := newHarness(t, 1)
	if err := h.RequestMoveStart(netconfig.Left); err != nil {
		t.Fatalf("RequestMoveStart: %v", err)
	}
	if err := h.RequestMoveStop(); err != nil {
		t.Fatalf("RequestMoveStop: %v", err)
	}
	if len(h.sender.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(h.sender.sent))
	}
	start, ok := h.sender.sent[0].(messages.MoveStartRequest)
	if !ok || start.Dir != "left" {
		t.Fatalf("first message = %#v", h.sender.sent[0])
	}
	if _, ok := h.sender.sent[1].(messages.MoveStopRequest); !ok {
		t.Fatalf("second message = %#v", h.sender.sent[1])
	}

	h.sender.err = errors.New("socket closed")
	if err := h.RequestMoveStop(); err == nil {
		t.Fatal("send failure not reported")
	}
}

type queue []messages.Event

func (q *queue) DrainEvents() []messages.Event {
	out := *q
	*q = nil
	return out
}

func TestPumpAppliesInOrder(t *testing.T) {
	c := NewCoordinator(fakeSprites{}, fakeTiles{}, nil, nil, testOptions, zaptest.NewLogger(t).Sugar())
	q := &queue{
		messages.LoggedIn{PlayerID: 1},
		messages.MapInfo{Width: 1, Height: 1, Layers: [][]int{{1}}, Players: []messages.PlayerInfo{player(1, 0, 0, "down")}},
		messages.MoveStart{ID: 1, Dir: "left"},
		messages.MoveStop{ID: 1, X: 0, Y: 0},
		messages.EntityDisappear{ID: 1},
	}
	if n := c.Pump(q); n != 5 {
		t.Fatalf("Pump applied %d events, want 5", n)
	}
	if c.State() != Connected || c.EntityCount() != 0 {
		t.Fatalf("state %v with %d entities", c.State(), c.EntityCount())
	}
	if n := c.Pump(q); n != 0 {
		t.Fatalf("second Pump applied %d events", n)
	}
}
