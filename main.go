package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	_ "github.com/silbinarywolf/preferdiscretegpu"

	eb "github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"softhorizon/config"
	"softhorizon/core"
	"softhorizon/headless"
	"softhorizon/misc"
)

var (
	FlagConfigPath  string
	FlagHotReload   bool
	FlagShaderDir   string
	FlagMetricsAddr string
	FlagDebug       bool

	FlagHeadless bool
	FlagFrames   int
	FlagOut      string
	FlagWidth    int
	FlagHeight   int
)

func init() {
	flag.StringVar(&FlagConfigPath, "config", "softhorizon.json", "config file")
	flag.BoolVar(&FlagHotReload, "hot", false, "reload the config file when it changes")
	flag.StringVar(&FlagShaderDir, "shaders", "", "directory to reload shaders from on F5")
	flag.StringVar(&FlagMetricsAddr, "metrics", "", "serve metrics and pprof on this address")
	flag.BoolVar(&FlagDebug, "debug", false, "debug logging")

	flag.BoolVar(&FlagHeadless, "headless", false, "render without a window and write a png")
	flag.IntVar(&FlagFrames, "frames", 120, "frames to render in headless mode")
	flag.StringVar(&FlagOut, "out", "frame.png", "headless output file")
	flag.IntVar(&FlagWidth, "width", 600, "window or headless width")
	flag.IntVar(&FlagHeight, "height", 600, "window or headless height")
}

func main() {
	flag.Parse()

	logger := misc.NewLogger(FlagDebug)
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Error("exiting", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load(FlagConfigPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := core.NewMetrics(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if FlagMetricsAddr != "" {
		go ServeMetrics(ctx, FlagMetricsAddr, reg, logger)
	}

	if FlagHeadless {
		img, err := headless.Run(cfg, headless.Options{
			Width:   FlagWidth,
			Height:  FlagHeight,
			Frames:  FlagFrames,
			Pointer: headless.Orbit(FlagWidth, FlagHeight, FlagFrames),
			Logger:  logger,
			Metrics: metrics,
		})
		if err != nil {
			return err
		}
		if err := headless.WritePNG(FlagOut, img); err != nil {
			return err
		}
		logger.Info("wrote frame", zap.String("path", FlagOut))
		return nil
	}

	var configs <-chan config.Config
	if FlagHotReload {
		configs, err = config.Watch(ctx, FlagConfigPath, logger)
		if err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
	}

	InitClipboardManager(logger)

	app := NewApp(cfg, logger, metrics)
	app.Configs = configs
	defer app.Close()

	eb.SetVsyncEnabled(true)
	eb.SetWindowSize(FlagWidth, FlagHeight)
	eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
	eb.SetWindowTitle("softhorizon")
	// the composite writes every pixel, and a dropped frame keeps the
	// previous one on screen
	eb.SetScreenClearedEveryFrame(false)
	// one simulation step per displayed frame
	eb.SetTPS(eb.SyncWithFPS)

	if err := eb.RunGame(app); err != nil {
		return err
	}

	return nil
}
