package main

import (
	"fmt"
	"time"

	eb "github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"softhorizon/config"
	"softhorizon/core"
	"softhorizon/gpu"
	"softhorizon/texsrc"
)

const frameHistoryLength = 120

type App struct {
	ShowDebugConsole bool

	// delivers reloaded configs, nil without hot reloading
	Configs <-chan config.Config

	cfg     config.Config
	logger  *zap.Logger
	metrics *core.Metrics

	device  *gpu.Device
	core    *core.RenderCore
	adapter *core.Adapter
	inbox   *core.Inbox
	source  texsrc.Source

	pointer PointerTracker

	logicalW    int
	logicalH    int
	deviceScale float64

	frameTimes CircularQueue[time.Duration]
	lastDraw   time.Time

	screenshotRequested bool
	copyRequested       bool

	// returned from the next Update, which stops the game
	err error
}

func NewApp(cfg config.Config, logger *zap.Logger, metrics *core.Metrics) *App {
	a := new(App)
	a.cfg = cfg
	a.logger = logger
	a.metrics = metrics
	a.inbox = new(core.Inbox)
	a.adapter = core.NewAdapter(a.inbox, cfg.PixelRatioCap)
	a.frameTimes = NewCircularQueue[time.Duration](frameHistoryLength)
	return a
}

// init creates the device and the render core at the first layout, when the
// window size is known.
func (a *App) init(logicalW, logicalH int, deviceScale float64) error {
	device, err := gpu.New()
	if err != nil {
		return err
	}

	source, err := texsrc.FromConfig(a.cfg, a.logger)
	if err != nil {
		device.Close()
		return err
	}

	width, height := a.adapter.Geometry(logicalW, logicalH, deviceScale)

	rc, err := core.New(device, source, width, height,
		core.WithInbox(a.inbox),
		core.WithLogger(a.logger),
		core.WithMetrics(a.metrics),
		core.WithStyle(core.Style{ClearColor: a.cfg.ClearColor}),
	)
	if err != nil {
		device.Close()
		return err
	}

	a.device = device
	a.source = source
	a.core = rc

	return nil
}

func (a *App) Close() {
	if a.core != nil {
		a.core.Close()
	}
	if a.device != nil {
		a.device.Close()
	}
}

func (a *App) Update() error {
	if a.err != nil {
		return a.err
	}
	if a.core == nil {
		return nil
	}

	ClearDebugMsgs()

	fpsStr := fmt.Sprintf("%.2f", eb.ActualFPS())
	tpsStr := fmt.Sprintf("%.2f", eb.ActualTPS())

	eb.SetWindowTitle("softhorizon FPS: " + fpsStr + " TPS: " + tpsStr)

	DebugPrint("FPS", fpsStr)
	DebugPrint("TPS", tpsStr)

	// ==========================
	// config reloading
	// ==========================
	select {
	case cfg, ok := <-a.Configs:
		if ok {
			a.applyConfig(cfg)
		} else {
			a.Configs = nil
		}
	default:
	}

	// ==========================
	// hotkeys
	// ==========================
	if IsKeyJustPressed(ShowDebugConsoleKey) {
		a.ShowDebugConsole = !a.ShowDebugConsole
	}

	if IsKeyJustPressed(ReloadKey) {
		a.reload()
	}

	if IsKeyJustPressed(ScreenshotKey) {
		a.screenshotRequested = true
	}

	if IsControlPressed() && IsKeyJustPressed(CopyKey) {
		a.copyRequested = true
	}

	if IsControlPressed() && IsKeyJustPressed(PasteKey) {
		a.pasteImage()
	}

	// ==========================
	// pointer
	// ==========================
	bufW, bufH := a.adapter.BufferSize()
	if x, y, ok := a.pointer.Update(bufW, bufH); ok {
		ratio := a.adapter.Ratio()
		a.adapter.PointerMove(x/ratio, y/ratio)
	} else {
		a.adapter.PointerLeave()
	}

	if a.ShowDebugConsole {
		a.printDebugInfo()
	}

	return nil
}

func (a *App) Draw(dst *eb.Image) {
	if a.core == nil || a.err != nil {
		return
	}

	now := time.Now()
	if !a.lastDraw.IsZero() {
		a.frameTimes.Enqueue(now.Sub(a.lastDraw))
	}
	a.lastDraw = now

	if err := a.core.RunTick(gpu.Screen{Img: dst}); err != nil {
		a.err = err
		return
	}

	if a.screenshotRequested {
		a.screenshotRequested = false
		if path, err := TakeScreenshot(dst); err != nil {
			a.logger.Error("screenshot failed", zap.Error(err))
		} else {
			a.logger.Info("saved screenshot", zap.String("path", path))
		}
	}

	if a.copyRequested {
		a.copyRequested = false
		if err := ClipboardWriteImage(dst); err != nil {
			a.logger.Error("copying frame failed", zap.Error(err))
		}
	}

	if a.ShowDebugConsole {
		DrawDebugMsgs(dst)
	}
}

// Layout returns the buffer size, the window size times the capped device
// pixel ratio, so the state has one texel per buffer pixel.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	deviceScale := eb.Monitor().DeviceScaleFactor()

	if a.core == nil && a.err == nil {
		if err := a.init(outsideWidth, outsideHeight, deviceScale); err != nil {
			a.err = err
		}
	} else if outsideWidth != a.logicalW || outsideHeight != a.logicalH || deviceScale != a.deviceScale {
		a.adapter.Resize(outsideWidth, outsideHeight, deviceScale)
	}

	a.logicalW = outsideWidth
	a.logicalH = outsideHeight
	a.deviceScale = deviceScale

	w, h := a.adapter.BufferSize()
	return max(w, 1), max(h, 1)
}

func (a *App) applyConfig(cfg config.Config) {
	prev := a.cfg
	a.cfg = cfg

	a.core.SetStyle(core.Style{ClearColor: cfg.ClearColor})

	if cfg.PixelRatioCap != prev.PixelRatioCap {
		a.adapter.SetPixelRatioCap(cfg.PixelRatioCap)
		a.adapter.Resize(a.logicalW, a.logicalH, a.deviceScale)
	}

	if text, ok := a.source.(*texsrc.TextSource); ok && cfg.Image == "" {
		text.SetStyle(texsrc.TextStyleFromConfig(cfg))
		return
	}

	source, err := texsrc.FromConfig(cfg, a.logger)
	if err != nil {
		a.logger.Error("keeping previous texture source", zap.Error(err))
		return
	}
	a.setSource(source)
}

func (a *App) setSource(source texsrc.Source) {
	a.source = source
	a.core.SetSource(source)
}

// reload re-reads the config file, and the shaders when a shader directory
// was given.
func (a *App) reload() {
	cfg, err := config.Load(FlagConfigPath)
	if err != nil {
		a.logger.Error("config reload failed", zap.Error(err))
	} else {
		a.applyConfig(cfg)
		a.logger.Info("config reloaded", zap.String("path", FlagConfigPath))
	}

	if FlagShaderDir != "" {
		if err := a.device.ReloadShaders(FlagShaderDir); err != nil {
			a.logger.Error("shader reload failed", zap.Error(err))
		} else {
			a.logger.Info("shaders reloaded", zap.String("dir", FlagShaderDir))
		}
	}
}

func (a *App) pasteImage() {
	img, err := ClipboardReadImage()
	if err != nil {
		a.logger.Warn("paste failed", zap.Error(err))
		return
	}

	if src, ok := a.source.(*texsrc.ImageSource); ok {
		src.SetImage(img)
		return
	}
	a.setSource(texsrc.NewImageSource(img, a.logger))
}

func (a *App) printDebugInfo() {
	bufW, bufH := a.adapter.BufferSize()
	u := a.core.Uniforms()

	DebugPrintf("buffer", "%dx%d @ %.2f", bufW, bufH, a.adapter.Ratio())
	DebugPrint("frame", u.Frame)
	DebugPrint("dropped", a.core.DroppedFrames())
	DebugPrint("texture", a.core.HasTexture())
	DebugPrintf("mouse", "%.1f, %.1f", u.Mouse.X(), u.Mouse.Y())

	if core.PointerActive(u.Mouse) {
		if h, err := a.core.Probe(int(u.Mouse.X()), int(u.Mouse.Y())); err == nil {
			DebugPrintf("height", "%.4f", h)
		}
	}

	if !a.frameTimes.IsEmpty() {
		var total time.Duration
		for i := 0; i < a.frameTimes.Length; i++ {
			total += a.frameTimes.At(i)
		}
		DebugPrintf("frame time", "%.2fms", float64(total.Microseconds())/float64(a.frameTimes.Length)/1000)
	}
}
