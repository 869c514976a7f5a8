package scenes

import (
	"sync"
	"time"

	"github.com/automoto/retrorealms/components"
	cfg "github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/logging"
	"github.com/automoto/retrorealms/network"
	"github.com/automoto/retrorealms/scheduler"
	"github.com/automoto/retrorealms/systems"
	"github.com/automoto/retrorealms/world"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi/ecs"
	"go.uber.org/zap"
)

// WorldScene shows the map area the local player is in. Each frame it applies the
// server events received since the last one, moves entities along, reads the
// keyboard and draws.
type WorldScene struct {
	ecs    *ecs.ECS
	frame  *scheduler.Frame
	client *network.Client
	coord  *world.Coordinator
	keys   *components.KeyBuffer
	intent *world.Intent
	log    *zap.SugaredLogger
	once   sync.Once

	loggingOut bool
}

func NewWorldScene(client *network.Client, coord *world.Coordinator, keys *components.KeyBuffer) *WorldScene {
	return &WorldScene{
		client: client,
		coord:  coord,
		keys:   keys,
		log:    logging.Named("scene"),
	}
}

func (ws *WorldScene) Update() {
	ws.once.Do(ws.configure)
	ws.frame.Step()
}

func (ws *WorldScene) Draw(screen *ebiten.Image) {
	// Always clear screen to prevent white flashes from OS window background
	screen.Fill(cfg.UI.BackgroundColor)

	if ws.ecs == nil {
		return
	}
	ws.ecs.Draw(screen)
}

// Done reports whether the player logged out and the session has wound down.
func (ws *WorldScene) Done() bool {
	return ws.loggingOut && ws.coord.State() == world.Disconnected
}

func (ws *WorldScene) configure() {
	ws.intent = world.NewIntent(ws.coord, cfg.C.InputInterval, cfg.C.InputBurst, ws.log)

	e := ecs.NewECS(ws.coord.World())
	e.AddSystem(systems.NewInputSystem(ws.keys, ws.intent, ws.logout))
	e.AddRenderer(systems.LayerWorld, systems.NewRenderSystem(ws.coord))
	e.AddRenderer(systems.LayerHUD, systems.NewHUDSystem(ws.status))
	ws.ecs = e

	ws.frame = scheduler.NewFrame(ws.tick, nil, nil, logging.Named("scheduler"))
}

func (ws *WorldScene) tick(now time.Time) {
	ws.coord.Pump(ws.client)
	ws.coord.Tick(now)
	ws.ecs.Update()
}

func (ws *WorldScene) logout() {
	if ws.loggingOut {
		return
	}
	ws.log.Infow("logging out", "session", ws.client.SessionID())
	ws.loggingOut = true
	ws.client.Disconnect()
}

func (ws *WorldScene) status() world.Status {
	return world.Status{
		Conn:      ws.client.State().String(),
		Player:    cfg.C.Username,
		Entities:  ws.coord.EntityCount(),
		Uptime:    ws.client.Uptime(),
		Session:   ws.client.SessionID(),
		Err:       ws.client.LastError(),
		Throttled: ws.intent.Throttled(),
	}
}
