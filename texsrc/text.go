package texsrc

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextStyle describes how TextSource rasterizes its text.
type TextStyle struct {
	Text       string
	Background color.NRGBA
	Foreground color.NRGBA
	// font pixel size relative to the buffer height
	FontSizeRatio float64
}

// TextSource renders a single centered line of text over a solid
// background at the buffer size.
type TextSource struct {
	refresher

	font *opentype.Font

	styleMu sync.Mutex
	style   TextStyle
}

// NewTextSource uses the Go Bold font. The source has no image until the
// first Refresh finished.
func NewTextSource(style TextStyle, logger *zap.Logger) (*TextSource, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &TextSource{font: f, style: style}
	s.refresher.logger = logger.Named("text")
	s.refresher.render = s.renderCurrentStyle

	return s, nil
}

func (s *TextSource) Style() TextStyle {
	s.styleMu.Lock()
	defer s.styleMu.Unlock()
	return s.style
}

// SetStyle re-rasterizes at the last refreshed size.
func (s *TextSource) SetStyle(style TextStyle) {
	s.styleMu.Lock()
	s.style = style
	s.styleMu.Unlock()

	s.rerender()
}

func (s *TextSource) renderCurrentStyle(width, height int) (image.Image, error) {
	return RasterizeText(s.font, s.Style(), width, height)
}

// RasterizeText draws style.Text centered on a width x height image. The
// font shrinks when the line would not fit 90% of the width.
func RasterizeText(f *opentype.Font, style TextStyle, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("rasterize text at %dx%d: invalid size", width, height)
	}
	if style.FontSizeRatio <= 0 {
		return nil, fmt.Errorf("rasterize text: font size ratio %v must be positive", style.FontSizeRatio)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)

	if style.Text == "" {
		return dst, nil
	}

	size := style.FontSizeRatio * float64(height)

	face, err := newFace(f, size)
	if err != nil {
		return nil, err
	}
	advance := font.MeasureString(face, style.Text)

	limit := fixed.I(width * 9 / 10)
	if advance > limit && advance > 0 {
		face.Close()
		size *= float64(limit) / float64(advance)
		if face, err = newFace(f, size); err != nil {
			return nil, err
		}
		advance = font.MeasureString(face, style.Text)
	}
	defer face.Close()

	metrics := face.Metrics()
	x := (fixed.I(width) - advance) / 2
	// baseline such that the ascent/descent box is vertically centered
	y := (fixed.I(height) + metrics.Ascent - metrics.Descent) / 2

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.Foreground),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(style.Text)

	return dst, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face of size %v: %w", size, err)
	}
	return face, nil
}
