// Package core is the ripple render pipeline: a ping-pong pair of state
// surfaces advanced by a simulation pass and displayed through a composite
// pass that displaces a texture source by the simulated heights.
//
// The core never schedules itself. Hosts call RenderCore.RunTick once per
// display refresh and feed pointer and resize events through an Adapter.
package core

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaxConsecutiveDrops is the number of dropped frames in a row after which
// the failure is treated as sustained and fatal.
const MaxConsecutiveDrops = 120

// TextureSource supplies the image that gets displaced.
type TextureSource interface {
	// Current returns the latest finished image, or nil while none is
	// ready, and a generation number that changes whenever the image does.
	Current() (image.Image, uint64)

	// Refresh asks the source to re-render for a new buffer size.
	Refresh(width, height int)
}

type Option func(*RenderCore)

func WithLogger(logger *zap.Logger) Option {
	return func(rc *RenderCore) {
		if logger != nil {
			rc.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(rc *RenderCore) {
		rc.metrics = metrics
	}
}

func WithClock(clock Clock) Option {
	return func(rc *RenderCore) {
		if clock != nil {
			rc.clock = clock
		}
	}
}

func WithStyle(style Style) Option {
	return func(rc *RenderCore) {
		rc.style = style
	}
}

// WithInbox lets an Adapter created before the core feed it.
func WithInbox(inbox *Inbox) Option {
	return func(rc *RenderCore) {
		if inbox != nil {
			rc.inbox = inbox
		}
	}
}

// RenderCore owns every resource of the pipeline.
type RenderCore struct {
	device  Device
	targets *TargetPair
	inbox   *Inbox
	source  TextureSource

	uniforms Uniforms
	frames   uint32
	style    Style

	texture    Texture
	textureGen uint64

	clock   Clock
	logger  *zap.Logger
	metrics *Metrics

	consecutiveDrops int
	totalDrops       uint64

	fatal error
}

// New allocates the render targets at width x height buffer pixels. source
// may be nil, in which case the composite always takes the degraded path.
func New(
	device Device,
	source TextureSource,
	width, height int,
	opts ...Option,
) (*RenderCore, error) {
	rc := &RenderCore{
		device: device,
		source: source,
		inbox:  new(Inbox),
		clock:  NewWallClock(),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(rc)
	}

	targets, err := NewTargetPair(device, width, height)
	if err != nil {
		return nil, fmt.Errorf("allocating render targets: %w", err)
	}
	rc.targets = targets
	rc.uniforms.Resolution = mgl32.Vec2{float32(width), float32(height)}

	if rc.source != nil {
		rc.source.Refresh(width, height)
	}

	rc.logger.Info("render core ready", zap.Int("width", width), zap.Int("height", height))

	return rc, nil
}

func (rc *RenderCore) Inbox() *Inbox {
	return rc.inbox
}

func (rc *RenderCore) Targets() *TargetPair {
	return rc.targets
}

// Uniforms returns the values used by the last tick.
func (rc *RenderCore) Uniforms() Uniforms {
	return rc.uniforms
}

// Frames is the number of ticks that reached the passes.
func (rc *RenderCore) Frames() uint32 {
	return rc.frames
}

func (rc *RenderCore) DroppedFrames() uint64 {
	return rc.totalDrops
}

// Err returns the fatal error that stopped the core, if any.
func (rc *RenderCore) Err() error {
	return rc.fatal
}

// HasTexture reports whether a source texture has been uploaded.
func (rc *RenderCore) HasTexture() bool {
	return rc.texture != nil
}

// SetStyle takes effect on the next tick.
func (rc *RenderCore) SetStyle(style Style) {
	rc.style = style
}

// SetSource replaces the texture source. The current texture stays until
// the new source has an image ready.
func (rc *RenderCore) SetSource(source TextureSource) {
	rc.source = source
	rc.textureGen = 0
	if source != nil {
		source.Refresh(rc.targets.Size())
	}
}

// Probe reads the height of the current state at buffer pixel (x, y).
func (rc *RenderCore) Probe(x, y int) (float32, error) {
	return rc.device.Probe(rc.targets.Current(), x, y)
}

// RunTick advances exactly one frame and writes it into out. It returns a
// non-nil error only when the core hit a fatal failure; the host must stop
// calling it then.
func (rc *RenderCore) RunTick(out Surface) error {
	if rc.fatal != nil {
		return rc.fatal
	}

	timer := NewProfTimer()
	defer func() {
		rc.metrics.tick(timer.Elapsed().Seconds())
	}()

	// ==========================
	// apply staged input
	// ==========================
	staged := rc.inbox.Take()
	rc.uniforms.Mouse = staged.Mouse

	if staged.ResizeRequested {
		rc.applyResize(staged.Width, staged.Height)
		if rc.fatal != nil {
			return rc.fatal
		}
	}

	rc.syncTexture()
	if rc.fatal != nil {
		return rc.fatal
	}

	// ==========================
	// advance counters
	// ==========================
	rc.uniforms.Frame = rc.frames
	rc.frames++
	rc.uniforms.Time = float32(rc.clock.Now().Seconds())

	// ==========================
	// simulate, composite, swap
	// ==========================
	if err := rc.device.Simulate(rc.targets.Scratch(), rc.targets.Current(), rc.uniforms); err != nil {
		rc.drop("simulate", err)
		return rc.fatal
	}

	if err := rc.device.Composite(out, rc.targets.Scratch(), rc.texture, rc.style); err != nil {
		rc.drop("composite", err)
		return rc.fatal
	}

	rc.targets.Swap()

	rc.consecutiveDrops = 0
	rc.metrics.frame()

	return nil
}

// Close releases every device resource held by the core.
func (rc *RenderCore) Close() {
	rc.targets.Release()
	if rc.texture != nil {
		rc.device.ReleaseTexture(rc.texture)
		rc.texture = nil
	}
}

func (rc *RenderCore) applyResize(width, height int) {
	err := rc.targets.Resize(width, height)
	if err != nil {
		rc.metrics.resized(false)
		if IsFatal(err) {
			rc.fatal = err
			rc.logger.Error("render target reallocation lost the device", zap.Error(err))
			return
		}
		w, h := rc.targets.Size()
		rc.logger.Error("skipping resize, keeping previous targets",
			zap.Error(err),
			zap.Int("width", w),
			zap.Int("height", h),
		)
		return
	}

	rc.metrics.resized(true)
	rc.uniforms.Resolution = mgl32.Vec2{float32(width), float32(height)}

	if rc.source != nil {
		rc.source.Refresh(width, height)
	}

	rc.logger.Debug("render targets reallocated", zap.Int("width", width), zap.Int("height", height))
}

func (rc *RenderCore) syncTexture() {
	if rc.source == nil {
		return
	}

	img, gen := rc.source.Current()
	if img == nil || gen == rc.textureGen {
		return
	}
	// a failing image is not retried until the source produces a new one
	rc.textureGen = gen

	tex, err := rc.device.Upload(img)
	if err != nil {
		if IsFatal(err) {
			rc.fatal = fmt.Errorf("uploading texture: %w", err)
			rc.logger.Error("texture upload lost the device", zap.Error(err))
			return
		}
		rc.logger.Warn("texture upload failed, composite stays degraded", zap.Error(err), zap.Uint64("generation", gen))
		return
	}

	if rc.texture != nil {
		rc.device.ReleaseTexture(rc.texture)
	}
	rc.texture = tex
	rc.metrics.uploaded()
}

func (rc *RenderCore) drop(pass string, err error) {
	if IsFatal(err) {
		rc.fatal = fmt.Errorf("%s pass: %w", pass, err)
		rc.logger.Error("fatal pass failure", zap.String("pass", pass), zap.Error(err))
		return
	}

	rc.consecutiveDrops++
	rc.totalDrops++
	rc.metrics.dropped()

	rc.logger.Warn("frame dropped",
		zap.String("pass", pass),
		zap.Uint32("frame", rc.uniforms.Frame),
		zap.Error(err),
	)

	if rc.consecutiveDrops >= MaxConsecutiveDrops {
		rc.fatal = fmt.Errorf("%d frames dropped in a row, last %s error %w: %w",
			rc.consecutiveDrops, pass, err, ErrSustainedFailure)
		rc.logger.Error("sustained frame failure", zap.Error(rc.fatal))
	}
}
