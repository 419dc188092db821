package main

import (
	eb "github.com/hajimehoshi/ebiten/v2"
)

const (
	ReloadKey eb.Key = eb.KeyF5

	ShowDebugConsoleKey = eb.KeyF1

	ScreenshotKey eb.Key = eb.KeyP

	// with control
	CopyKey  eb.Key = eb.KeyC
	PasteKey eb.Key = eb.KeyV
)
