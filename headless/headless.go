// Package headless runs the render core on the CPU device without a
// window, following a scripted pointer path.
package headless

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"softhorizon/config"
	"softhorizon/core"
	"softhorizon/soft"
	"softhorizon/texsrc"
)

// PointerPath returns the client position of the pointer at a frame, or
// ok == false when the pointer is outside the surface.
type PointerPath func(frame int) (x, y float64, ok bool)

type Options struct {
	// buffer pixels
	Width  int
	Height int

	Frames int
	// simulated time per frame, 1/60 s when zero
	Step time.Duration

	Pointer PointerPath

	Logger  *zap.Logger
	Metrics *core.Metrics
}

// Orbit circles the center of a width x height surface once over frames.
func Orbit(width, height, frames int) PointerPath {
	cx, cy := float64(width)/2, float64(height)/2
	r := float64(min(width, height)) / 4

	return func(frame int) (float64, float64, bool) {
		t := 2 * math.Pi * float64(frame) / float64(max(frames, 1))
		return cx + r*math.Cos(t), cy + r*math.Sin(t), true
	}
}

// Run renders opts.Frames frames and returns the last one.
func Run(cfg config.Config, opts Options) (*image.NRGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("headless size %dx%d: %w", opts.Width, opts.Height, core.ErrInvalidSize)
	}
	if opts.Step <= 0 {
		opts.Step = time.Second / 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	source, err := texsrc.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	inbox := new(core.Inbox)
	adapter := core.NewAdapter(inbox, cfg.PixelRatioCap)
	width, height := adapter.Geometry(opts.Width, opts.Height, 1)

	rc, err := core.New(soft.New(), source, width, height,
		core.WithInbox(inbox),
		core.WithLogger(logger),
		core.WithMetrics(opts.Metrics),
		core.WithClock(&core.StepClock{Step: opts.Step}),
		core.WithStyle(core.Style{ClearColor: cfg.ClearColor}),
	)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	// the first frame already shows the source
	source.Wait()

	canvas := soft.NewCanvas(width, height)

	for i := 0; i < opts.Frames; i++ {
		if opts.Pointer != nil {
			if x, y, ok := opts.Pointer(i); ok {
				adapter.PointerMove(x, y)
			} else {
				adapter.PointerLeave()
			}
		}

		if err := rc.RunTick(canvas); err != nil {
			return nil, err
		}
	}

	logger.Info("headless run finished",
		zap.Int("frames", opts.Frames),
		zap.Uint64("dropped", rc.DroppedFrames()))

	return canvas.Img, nil
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
