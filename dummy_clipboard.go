// golang.design/x/clipboard thinks
// crashing is the best solution despite it having a
// Init funciton that returns an error...

//go:build js || (!windows && !cgo)

package main

import (
	"errors"
	"image"

	eb "github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

var TheClipboardManager struct {
	Initialized bool
}

var ErrClipboardDisabled = errors.New("clipboard is disabled")

func InitClipboardManager(logger *zap.Logger) {
	logger.Warn("clipboard is disabled on this build")
}

func ClipboardReadImage() (image.Image, error) {
	return nil, ErrClipboardDisabled
}

func ClipboardWriteImage(img *eb.Image) error {
	return ErrClipboardDisabled
}
