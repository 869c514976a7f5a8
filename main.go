package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"os/signal"
	"time"

	"github.com/automoto/retrorealms/assets"
	"github.com/automoto/retrorealms/components"
	"github.com/automoto/retrorealms/config"
	"github.com/automoto/retrorealms/fonts"
	"github.com/automoto/retrorealms/logging"
	"github.com/automoto/retrorealms/network"
	"github.com/automoto/retrorealms/scenes"
	"github.com/automoto/retrorealms/scheduler"
	"github.com/automoto/retrorealms/systems"
	"github.com/automoto/retrorealms/world"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
	Done() bool
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

func (g *Game) Update() error {
	g.scene.Update()
	if g.scene.Done() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

// decodeEbiten decodes atlas images straight into GPU memory.
func decodeEbiten(data []byte) (assets.Sheet, error) {
	img, _, err := ebitenutil.NewImageFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func main() {
	if err := config.ParseFlags(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if err := logging.Init(config.C.LogFile, config.C.Debug); err != nil {
		os.Stderr.WriteString("init logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.L()

	// Initialize persistence and fill in the last login when no flags were given
	if err := systems.InitPersistence(); err == nil {
		applySavedLogin(log)
	}

	if err := run(log); err != nil {
		log.Errorw("client stopped", "error", err)
		logging.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	decode := decodeEbiten
	if config.C.Headless {
		decode = assets.DecodeImage
	}
	lib, err := assets.LoadLibrary(os.DirFS(config.C.AssetDir), config.C.AtlasPath, decode, logging.Named("assets"))
	if err != nil {
		return err
	}

	client := network.NewClient(config.C.EventQueueSize, logging.Named("client"))
	keys := &components.KeyBuffer{}
	coord := world.NewCoordinator(lib, lib, client, keys, world.DefaultOptions(), logging.Named("world"))

	client.Connect(config.C.ServerAddress, config.C.Username, config.C.Password)
	_ = systems.SaveLogin(systems.SavedLogin{
		ServerAddress: config.C.ServerAddress,
		Username:      config.C.Username,
	})

	if config.C.Headless {
		return runHeadless(client, coord, log)
	}

	if err := fonts.LoadDefaults(config.UI.NameTagFontSize, config.UI.HUDFontSize); err != nil {
		return err
	}

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle("retrorealms")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeOnlyFullscreenEnabled)

	g := &Game{scene: scenes.NewWorldScene(client, coord, keys)}
	err = ebiten.RunGame(g)
	client.Disconnect()
	return err
}

// runHeadless keeps the world in sync without a window until interrupted.
func runHeadless(client *network.Client, coord *world.Coordinator, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frame := scheduler.NewFrame(func(now time.Time) {
		coord.Pump(client)
		coord.Tick(now)
	}, nil, nil, logging.Named("scheduler"))

	loop, err := scheduler.NewLoop(frame, config.C.HeadlessTPS, logging.Named("scheduler"))
	if err != nil {
		return err
	}

	err = loop.Run(ctx)
	client.Disconnect()
	log.Infow("headless run finished", "frames", frame.Frames(), "entities", coord.EntityCount())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func applySavedLogin(log *zap.SugaredLogger) {
	saved, err := systems.LoadLogin()
	if err != nil || saved == nil {
		return
	}
	if config.C.Username == "" {
		config.C.Username = saved.Username
		if saved.ServerAddress != "" {
			config.C.ServerAddress = saved.ServerAddress
		}
		log.Infow("using saved login", "user", saved.Username, "address", config.C.ServerAddress)
	}
}
