package config

import (
	"flag"
	"image/color"
	"time"
)

// Config holds the tunables of the client. Defaults are set in init and may be
// overridden from the command line.
type Config struct {
	// Viewport
	Width  int
	Height int

	// World
	TileSize int

	// Movement cadence: an entity walks WalkUnits pixels every WalkCycle,
	// matching the server's walk delay and player speed.
	WalkCycle time.Duration
	WalkUnits float64

	AnimationFrame time.Duration
	CameraEase     time.Duration

	// Network
	ServerAddress  string
	Username       string
	Password       string
	EventQueueSize int
	InputInterval  time.Duration
	InputBurst     int

	// Assets
	AssetDir  string
	AtlasPath string

	// Runtime
	LogFile     string
	Debug       bool
	Headless    bool
	HeadlessTPS int
}

// UIConfig holds colors and sizes for name tags and the HUD.
type UIConfig struct {
	NameTagColor    color.RGBA
	NameTagOutline  color.RGBA
	LocalNameColor  color.RGBA
	HUDTextColor    color.RGBA
	HUDWarnColor    color.RGBA
	BackgroundColor color.RGBA
	NameTagFontSize float64
	HUDFontSize     float64
	NameTagOffsetY  float64
}

var C *Config

var UI UIConfig

func init() {
	C = &Config{
		Width:    640,
		Height:   480,
		TileSize: 32,

		WalkCycle: 100 * time.Millisecond,
		WalkUnits: 8,

		AnimationFrame: 100 * time.Millisecond,
		CameraEase:     40 * time.Millisecond,

		ServerAddress:  "localhost:8080/client",
		EventQueueSize: 256,
		InputInterval:  50 * time.Millisecond,
		InputBurst:     4,

		AssetDir:  "assets/data",
		AtlasPath: "atlas.tmx",

		LogFile:     "retrorealms.log",
		HeadlessTPS: 60,
	}

	UI = UIConfig{
		NameTagColor:    color.RGBA{R: 0x30, G: 0xd0, B: 0x30, A: 0xff},
		NameTagOutline:  color.RGBA{A: 0xff},
		LocalNameColor:  color.RGBA{R: 0xf0, G: 0xe0, B: 0x40, A: 0xff},
		HUDTextColor:    color.RGBA{R: 0x90, G: 0xee, B: 0x90, A: 0xff},
		HUDWarnColor:    color.RGBA{R: 0xff, G: 0x80, B: 0x60, A: 0xff},
		BackgroundColor: color.RGBA{A: 0xff},
		NameTagFontSize: 12,
		HUDFontSize:     10,
		NameTagOffsetY:  4,
	}
}

// ParseFlags overrides C from command-line arguments (without the program name).
func ParseFlags(args []string) error {
	fs := flag.NewFlagSet("retrorealms", flag.ContinueOnError)
	fs.StringVar(&C.ServerAddress, "addr", C.ServerAddress, "game server address (host:port/path)")
	fs.StringVar(&C.Username, "user", C.Username, "account name")
	fs.StringVar(&C.Password, "password", C.Password, "account password")
	fs.StringVar(&C.AssetDir, "assets", C.AssetDir, "directory holding the atlas and its images")
	fs.StringVar(&C.AtlasPath, "atlas", C.AtlasPath, "atlas TMX file, relative to -assets")
	fs.StringVar(&C.LogFile, "log", C.LogFile, "log file (rotated)")
	fs.BoolVar(&C.Debug, "debug", C.Debug, "debug logging and overlay")
	fs.BoolVar(&C.Headless, "headless", C.Headless, "run without a window")
	fs.IntVar(&C.HeadlessTPS, "tps", C.HeadlessTPS, "frames per second when headless")
	return fs.Parse(args)
}
