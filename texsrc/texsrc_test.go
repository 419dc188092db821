package texsrc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"softhorizon/config"
)

var (
	background = color.NRGBA{251, 116, 39, 255}
	foreground = color.NRGBA{254, 244, 184, 255}
)

func testStyle(text string) TextStyle {
	return TextStyle{
		Text:          text,
		Background:    background,
		Foreground:    foreground,
		FontSizeRatio: 0.5,
	}
}

func countNot(img image.Image, c color.NRGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) != c {
				n++
			}
		}
	}
	return n
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRasterizeText(t *testing.T) {
	f, err := opentype.Parse(gobold.TTF)
	require.NoError(t, err)

	tests := []struct {
		name      string
		text      string
		w, h      int
		wantInked bool
	}{
		{name: "word", text: "ripple", w: 200, h: 80, wantInked: true},
		{name: "long line shrinks", text: "a rather long line of text", w: 120, h: 120, wantInked: true},
		{name: "empty", text: "", w: 50, h: 20, wantInked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RasterizeText(f, testStyle(tt.text), tt.w, tt.h)
			require.NoError(t, err)

			assert.Equal(t, image.Rect(0, 0, tt.w, tt.h), img.Bounds())
			assert.Equal(t, background, color.NRGBAModel.Convert(img.At(0, 0)))
			assert.Equal(t, background, color.NRGBAModel.Convert(img.At(tt.w-1, tt.h-1)))
			assert.Equal(t, tt.wantInked, countNot(img, background) > 0)
		})
	}
}

func TestRasterizeTextInvalid(t *testing.T) {
	f, err := opentype.Parse(gobold.TTF)
	require.NoError(t, err)

	_, err = RasterizeText(f, testStyle("x"), 0, 10)
	assert.Error(t, err)

	style := testStyle("x")
	style.FontSizeRatio = 0
	_, err = RasterizeText(f, style, 10, 10)
	assert.Error(t, err)
}

func TestScaleImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	dst, err := ScaleImage(src, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), dst.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, dst.RGBAAt(3, 2))

	_, err = ScaleImage(src, 0, 4)
	assert.Error(t, err)

	_, err = ScaleImage(image.NewNRGBA(image.Rectangle{}), 4, 4)
	assert.Error(t, err)
}

func TestDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 5))

	img, err := DecodeImage(encodePNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())

	_, err = DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestLoadImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 4, 4))), 0o644))

	img, err := LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = LoadImageFile(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTextSourceRefresh(t *testing.T) {
	s, err := NewTextSource(testStyle("hello"), zaptest.NewLogger(t))
	require.NoError(t, err)

	img, gen := s.Current()
	assert.Nil(t, img)
	assert.Zero(t, gen)

	s.Refresh(64, 32)
	s.Wait()

	img, gen = s.Current()
	require.NotNil(t, img)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	s.Refresh(128, 48)
	s.Wait()

	img, gen = s.Current()
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, image.Rect(0, 0, 128, 48), img.Bounds())

	// SetStyle re-renders at the last size
	style := testStyle("")
	s.SetStyle(style)
	s.Wait()

	img, gen = s.Current()
	assert.Equal(t, uint64(3), gen)
	assert.Equal(t, image.Rect(0, 0, 128, 48), img.Bounds())
	assert.Zero(t, countNot(img, background))
	assert.Equal(t, style, s.Style())
}

func TestSetStyleBeforeRefresh(t *testing.T) {
	s, err := NewTextSource(testStyle("hello"), nil)
	require.NoError(t, err)

	s.SetStyle(testStyle("bye"))
	s.Wait()

	img, gen := s.Current()
	assert.Nil(t, img)
	assert.Zero(t, gen)
}

func TestRefresherDropsStaleResults(t *testing.T) {
	release := make(chan struct{})
	started := make(chan int, 2)

	r := &refresher{
		logger: zaptest.NewLogger(t),
		render: func(width, height int) (image.Image, error) {
			started <- width
			if width == 10 {
				<-release
			}
			return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
		},
	}

	r.Refresh(10, 10)
	require.Equal(t, 10, <-started)

	r.Refresh(20, 20)
	require.Equal(t, 20, <-started)

	close(release)
	r.Wait()

	img, gen := r.Current()
	require.NotNil(t, img)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, uint64(1), gen)
}

func TestRefresherKeepsImageOnError(t *testing.T) {
	fail := false
	r := &refresher{
		logger: zaptest.NewLogger(t),
		render: func(width, height int) (image.Image, error) {
			if fail {
				return nil, errors.New("render failed")
			}
			return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
		},
	}

	r.Refresh(4, 4)
	r.Wait()

	fail = true
	r.Refresh(8, 8)
	r.Wait()

	img, gen := r.Current()
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, uint64(1), gen)
}

func TestImageSource(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	s := NewImageSource(src, zaptest.NewLogger(t))

	s.Refresh(16, 8)
	s.Wait()

	img, gen := s.Current()
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	assert.Equal(t, uint64(1), gen)

	s.SetImage(image.NewNRGBA(image.Rect(0, 0, 5, 5)))
	s.Wait()

	img, gen = s.Current()
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	assert.Equal(t, uint64(2), gen)
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "page.png")
	require.NoError(t, os.WriteFile(imagePath, encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 4, 4))), 0o644))

	tests := []struct {
		name      string
		image     string
		wantImage bool
	}{
		{name: "text", image: "", wantImage: false},
		{name: "image", image: imagePath, wantImage: true},
		{name: "missing image falls back", image: filepath.Join(dir, "missing.png"), wantImage: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Image = tt.image

			s, err := FromConfig(cfg, zaptest.NewLogger(t))
			require.NoError(t, err)

			_, isImage := s.(*ImageSource)
			assert.Equal(t, tt.wantImage, isImage)

			if text, ok := s.(*TextSource); ok {
				assert.Equal(t, TextStyleFromConfig(cfg), text.Style())
			}
		})
	}
}
