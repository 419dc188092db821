// Package texsrc provides texture sources for the render core: rasterized
// text and scaled bitmaps. Sources render on their own goroutine and
// publish finished images with a generation number.
package texsrc

import (
	"image"
	"sync"

	"go.uber.org/zap"
)

type renderFunc func(width, height int) (image.Image, error)

// refresher runs renders in the background and keeps the latest result.
// Results of superseded requests are thrown away.
type refresher struct {
	logger *zap.Logger
	render renderFunc

	mu     sync.Mutex
	img    image.Image
	gen    uint64
	req    uint64
	width  int
	height int

	wg sync.WaitGroup
}

func (r *refresher) Current() (image.Image, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img, r.gen
}

func (r *refresher) Refresh(width, height int) {
	r.mu.Lock()
	r.width = width
	r.height = height
	r.req++
	id := r.req
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		img, err := r.render(width, height)

		r.mu.Lock()
		defer r.mu.Unlock()

		if err != nil {
			r.logger.Warn("texture source render failed",
				zap.Int("width", width), zap.Int("height", height), zap.Error(err))
			return
		}
		if id != r.req {
			return
		}
		r.img = img
		r.gen++
	}()
}

// rerender repeats the last Refresh. It does nothing before the first one.
func (r *refresher) rerender() {
	r.mu.Lock()
	w, h := r.width, r.height
	r.mu.Unlock()

	if w > 0 && h > 0 {
		r.Refresh(w, h)
	}
}

// Wait blocks until every render started so far has finished.
func (r *refresher) Wait() {
	r.wg.Wait()
}
