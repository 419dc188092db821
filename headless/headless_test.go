package headless

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"softhorizon/config"
	"softhorizon/core"
	"softhorizon/texsrc"
)

func TestOrbit(t *testing.T) {
	path := Orbit(100, 60, 8)

	x, y, ok := path(0)
	assert.True(t, ok)
	assert.InDelta(t, 65, x, 1e-9)
	assert.InDelta(t, 30, y, 1e-9)

	x, y, _ = path(2)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 45, y, 1e-9)
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	metrics := core.NewMetrics(prometheus.NewRegistry())

	img, err := Run(cfg, Options{
		Width:   96,
		Height:  64,
		Frames:  12,
		Pointer: Orbit(96, 64, 12),
		Logger:  zaptest.NewLogger(t),
		Metrics: metrics,
	})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 96, 64), img.Bounds())
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.Frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TextureUploads))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FramesDropped))
}

func TestRunWithoutPointerShowsSource(t *testing.T) {
	cfg := config.Default()

	img, err := Run(cfg, Options{Width: 80, Height: 40, Frames: 3})
	require.NoError(t, err)

	want, err := texsrc.NewTextSource(texsrc.TextStyleFromConfig(cfg), nil)
	require.NoError(t, err)
	want.Refresh(80, 40)
	want.Wait()
	wantImg, _ := want.Current()

	// flat water shows the source unchanged
	for _, p := range []image.Point{{0, 0}, {40, 20}, {79, 39}} {
		assert.Equal(t,
			color.NRGBAModel.Convert(wantImg.At(p.X, p.Y)),
			color.Color(img.NRGBAAt(p.X, p.Y)),
			"pixel %v", p)
	}
}

func TestRunInvalidSize(t *testing.T) {
	_, err := Run(config.Default(), Options{Width: 0, Height: 10})
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, WritePNG(path, image.NewNRGBA(image.Rect(0, 0, 2, 2))))

	img, err := texsrc.LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())

	assert.Error(t, WritePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), img))
}
