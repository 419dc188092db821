//go:build !js && (windows || cgo)

package main

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	eb "github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"softhorizon/texsrc"
)

var TheClipboardManager struct {
	Initialized bool
}

var ErrClipboardDisabled = errors.New("clipboard is disabled")

func InitClipboardManager(logger *zap.Logger) {
	cm := &TheClipboardManager
	err := clipboard.Init()
	cm.Initialized = err == nil
	if err != nil {
		logger.Warn("clipboard is disabled", zap.Error(err))
	}
}

// ClipboardReadImage decodes the image on the clipboard.
func ClipboardReadImage() (image.Image, error) {
	cm := &TheClipboardManager
	if !cm.Initialized {
		return nil, ErrClipboardDisabled
	}

	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil, errors.New("no image on the clipboard")
	}

	return texsrc.DecodeImage(data)
}

// ClipboardWriteImage puts img on the clipboard as a png.
func ClipboardWriteImage(img *eb.Image) error {
	cm := &TheClipboardManager
	if !cm.Initialized {
		return ErrClipboardDisabled
	}

	buffer := &bytes.Buffer{}
	if err := png.Encode(buffer, ImageImageFromEbImage(img)); err != nil {
		return err
	}

	clipboard.Write(clipboard.FmtImage, buffer.Bytes())
	return nil
}
