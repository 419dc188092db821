package core

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms are the per-frame inputs of the simulation pass.
type Uniforms struct {
	// seconds since the core started
	Time float32
	// wraps on uint32 overflow
	Frame uint32
	// buffer pixels, origin bottom-left, (0, 0) when the pointer left
	Mouse mgl32.Vec2
	// buffer pixel width and height
	Resolution mgl32.Vec2
}

// Staged is a snapshot of everything written into an Inbox since the last
// tick.
type Staged struct {
	Mouse mgl32.Vec2

	ResizeRequested bool
	Width           int
	Height          int
}

// Inbox is the staging area between event handlers and the frame driver.
// Writers may run at any time; the frame driver takes one snapshot at the
// start of each tick so a frame never sees a half-applied update.
type Inbox struct {
	mu     sync.Mutex
	staged Staged
}

func (in *Inbox) SetMouse(mouse mgl32.Vec2) {
	in.mu.Lock()
	in.staged.Mouse = mouse
	in.mu.Unlock()
}

// RequestResize stages a reallocation. A later request replaces an earlier
// one that was not applied yet.
func (in *Inbox) RequestResize(width, height int) {
	in.mu.Lock()
	in.staged.ResizeRequested = true
	in.staged.Width = width
	in.staged.Height = height
	in.mu.Unlock()
}

// Take returns the staged values and consumes the pending resize.
func (in *Inbox) Take() Staged {
	in.mu.Lock()
	defer in.mu.Unlock()

	st := in.staged
	in.staged.ResizeRequested = false
	in.staged.Width = 0
	in.staged.Height = 0

	return st
}

// Adapter converts window-space pointer and resize events into buffer-pixel
// values and writes them into an Inbox. It never touches render targets.
type Adapter struct {
	inbox *Inbox

	pixelRatioCap float64

	ratio         float64
	logicalHeight float64
	bufWidth      int
	bufHeight     int
}

func NewAdapter(inbox *Inbox, pixelRatioCap float64) *Adapter {
	return &Adapter{
		inbox:         inbox,
		pixelRatioCap: max(pixelRatioCap, 1),
		ratio:         1,
	}
}

func (a *Adapter) SetPixelRatioCap(pixelRatioCap float64) {
	a.pixelRatioCap = max(pixelRatioCap, 1)
}

// PixelRatio is the device scale factor limited by the configured cap.
func (a *Adapter) PixelRatio(deviceScale float64) float64 {
	if deviceScale <= 0 || math.IsNaN(deviceScale) {
		deviceScale = 1
	}
	return min(deviceScale, a.pixelRatioCap)
}

// Geometry records the window geometry without staging a resize and
// returns the buffer size. Hosts use it for the initial allocation.
func (a *Adapter) Geometry(logicalW, logicalH int, deviceScale float64) (int, int) {
	a.ratio = a.PixelRatio(deviceScale)
	a.logicalHeight = float64(logicalH)
	a.bufWidth = int(math.Ceil(float64(logicalW) * a.ratio))
	a.bufHeight = int(math.Ceil(float64(logicalH) * a.ratio))

	return a.bufWidth, a.bufHeight
}

// Resize records the new geometry and stages a reallocation of the render
// targets at the resulting buffer size.
func (a *Adapter) Resize(logicalW, logicalH int, deviceScale float64) (int, int) {
	w, h := a.Geometry(logicalW, logicalH, deviceScale)
	a.inbox.RequestResize(w, h)
	return w, h
}

// Ratio is the pixel ratio of the last Geometry or Resize call.
func (a *Adapter) Ratio() float64 {
	return a.ratio
}

// BufferSize is the size computed by the last Geometry or Resize call.
func (a *Adapter) BufferSize() (int, int) {
	return a.bufWidth, a.bufHeight
}

// PointerMove takes client coordinates (logical pixels, origin top-left).
func (a *Adapter) PointerMove(clientX, clientY float64) {
	x := clientX * a.ratio
	y := (a.logicalHeight - clientY) * a.ratio
	a.inbox.SetMouse(mgl32.Vec2{float32(x), float32(y)})
}

// PointerLeave writes the zero sentinel.
func (a *Adapter) PointerLeave() {
	a.inbox.SetMouse(mgl32.Vec2{})
}
