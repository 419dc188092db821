package texsrc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageSource scales a bitmap to the buffer size. It stands in for a
// snapshot of rendered page content.
type ImageSource struct {
	refresher

	origMu sync.Mutex
	orig   image.Image
}

func NewImageSource(img image.Image, logger *zap.Logger) *ImageSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ImageSource{orig: img}
	s.refresher.logger = logger.Named("image")
	s.refresher.render = s.renderScaled

	return s
}

// SetImage replaces the bitmap and re-scales it at the last refreshed
// size.
func (s *ImageSource) SetImage(img image.Image) {
	s.origMu.Lock()
	s.orig = img
	s.origMu.Unlock()

	s.rerender()
}

func (s *ImageSource) renderScaled(width, height int) (image.Image, error) {
	s.origMu.Lock()
	orig := s.orig
	s.origMu.Unlock()

	if orig == nil {
		return nil, fmt.Errorf("no image set")
	}
	return ScaleImage(orig, width, height)
}

// ScaleImage stretches img to width x height with bilinear filtering.
func ScaleImage(img image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scale image to %dx%d: invalid size", width, height)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("scale image: empty source")
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	return dst, nil
}

// DecodeImage decodes PNG, JPEG, BMP or WebP data.
func DecodeImage(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decoding image: empty %s image", format)
	}
	return img, nil
}

func LoadImageFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
