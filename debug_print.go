package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	eb "github.com/hajimehoshi/ebiten/v2"
	ebt "github.com/hajimehoshi/ebiten/v2/text/v2"
	ebv "github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gomono"

	"softhorizon/gpu"
)

type DebugMsg struct {
	Key   string
	Value string
}

var TheDebugPrintManager struct {
	DebugMsgs []DebugMsg

	DebugMsgRenderTarget *eb.Image

	Face *ebt.GoTextFace

	builder strings.Builder
}

func init() {
	faceSource, err := ebt.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		panic(fmt.Sprintf("failed to load debug font: %v", err))
	}

	TheDebugPrintManager.Face = &ebt.GoTextFace{
		Source: faceSource,
		Size:   16,
	}
}

func DebugPrintf(key, fmtStr string, values ...any) {
	DebugPuts(key, fmt.Sprintf(fmtStr, values...))
}

func DebugPrint(key string, values ...any) {
	DebugPuts(key, fmt.Sprint(values...))
}

func DebugPuts(key, value string) {
	dm := &TheDebugPrintManager

	for i, msg := range dm.DebugMsgs {
		if msg.Key == key {
			dm.DebugMsgs[i].Value = value
			return
		}
	}

	dm.DebugMsgs = append(dm.DebugMsgs, DebugMsg{
		Key:   key,
		Value: value,
	})
}

func DrawDebugMsgs(dst *eb.Image) {
	dm := &TheDebugPrintManager

	dm.builder.Reset()

	for i, msg := range dm.DebugMsgs {
		// builder doesn't actually errors out
		dm.builder.WriteString(msg.Key)
		dm.builder.WriteString(": ")
		dm.builder.WriteString(msg.Value)

		if i != len(dm.DebugMsgs)-1 {
			dm.builder.WriteString("\n")
		}
	}

	const hozMargin = 5
	const vertMargin = 5

	lineSpacing := dm.Face.Size + 3

	text := dm.builder.String()

	w, h := ebt.Measure(text, dm.Face, lineSpacing)

	boxW, boxH := w+hozMargin*2, h+vertMargin*2

	createBuf := dm.DebugMsgRenderTarget == nil
	createBuf = createBuf || dm.DebugMsgRenderTarget.Bounds().Dx() < int(boxW+1)
	createBuf = createBuf || dm.DebugMsgRenderTarget.Bounds().Dy() < int(boxH+1)

	if createBuf {
		if dm.DebugMsgRenderTarget != nil {
			dm.DebugMsgRenderTarget.Deallocate()
		}
		dm.DebugMsgRenderTarget = eb.NewImageWithOptions(
			image.Rect(0, 0, int(boxW+1), int(boxH+1)),
			&eb.NewImageOptions{Unmanaged: true},
		)
	}

	dm.DebugMsgRenderTarget.Clear()

	// draw background
	ebv.DrawFilledRect(
		dm.DebugMsgRenderTarget,
		0, 0, float32(boxW), float32(boxH),
		color.NRGBA{255, 255, 255, 255},
		false,
	)
	ebv.DrawFilledRect(
		dm.DebugMsgRenderTarget,
		2, 2, float32(boxW-4), float32(boxH-4),
		color.NRGBA{0, 0, 0, 255},
		false,
	)

	// draw text
	{
		op := &ebt.DrawOptions{}
		op.GeoM.Translate(hozMargin, vertMargin)
		op.ColorScale.ScaleWithColor(color.NRGBA{255, 255, 255, 255})
		op.LineSpacing = lineSpacing

		ebt.Draw(dm.DebugMsgRenderTarget, text, dm.Face, op)
	}

	// draw DebugMsgRenderTarget at the bottom right
	{
		bounds := dst.Bounds()
		op := &gpu.DrawImageOptions{}
		op.GeoM.Translate(float64(bounds.Max.X)-boxW, float64(bounds.Max.Y)-boxH)
		gpu.DrawImage(dst, dm.DebugMsgRenderTarget, op)
	}
}

func ClearDebugMsgs() {
	dm := &TheDebugPrintManager

	dm.DebugMsgs = dm.DebugMsgs[:0]
}
