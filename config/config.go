// Package config loads the renderer's static configuration from a JSON
// file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"softhorizon/misc"
)

const (
	DefaultClearColor    = "#fb7427"
	DefaultTextColor     = "#fef4b8"
	DefaultText          = "softhorizon"
	DefaultFontSizeRatio = 0.25
	DefaultPixelRatioCap = 2
)

type Config struct {
	// background of the text source, and of the composite until a
	// texture is ready
	ClearColor color.NRGBA
	TextColor  color.NRGBA
	// font pixel size / buffer height
	FontSizeRatio float64
	// upper bound of the device pixel ratio
	PixelRatioCap float64

	// Text is rendered by the text source.
	Text string
	// Image, when set, is a bitmap used instead of the text.
	Image string
}

// fileConfig mirrors the JSON document. Absent keys keep their defaults.
type fileConfig struct {
	ClearColor    *string  `json:"clearColor"`
	TextColor     *string  `json:"textColor"`
	FontSizeRatio *float64 `json:"fontSizeRatio"`
	PixelRatioCap *float64 `json:"pixelRatioCap"`
	Text          *string  `json:"text"`
	Image         *string  `json:"image"`
}

var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	DisallowUnknownFields:  true,
	ValidateJsonRawMessage: true,
}.Froze()

func Default() Config {
	clearColor, _ := ParseColorString(DefaultClearColor)
	textColor, _ := ParseColorString(DefaultTextColor)

	return Config{
		ClearColor:    clearColor,
		TextColor:     textColor,
		FontSizeRatio: DefaultFontSizeRatio,
		PixelRatioCap: DefaultPixelRatioCap,
		Text:          DefaultText,
	}
}

func (c Config) Validate() error {
	if !(c.FontSizeRatio > 0 && c.FontSizeRatio <= 1) {
		return fmt.Errorf("fontSizeRatio %v must be in (0, 1]", c.FontSizeRatio)
	}
	if !(c.PixelRatioCap >= 1) || math.IsInf(c.PixelRatioCap, 0) {
		return fmt.Errorf("pixelRatioCap %v must be a finite number >= 1", c.PixelRatioCap)
	}
	return nil
}

// Parse reads a JSON document on top of Default. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var fc fileConfig
	if err := strictJSON.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	var err error

	if fc.ClearColor != nil {
		if cfg.ClearColor, err = ParseColorString(*fc.ClearColor); err != nil {
			return cfg, fmt.Errorf("clearColor: %w", err)
		}
	}
	if fc.TextColor != nil {
		if cfg.TextColor, err = ParseColorString(*fc.TextColor); err != nil {
			return cfg, fmt.Errorf("textColor: %w", err)
		}
	}
	if fc.FontSizeRatio != nil {
		cfg.FontSizeRatio = *fc.FontSizeRatio
	}
	if fc.PixelRatioCap != nil {
		cfg.PixelRatioCap = *fc.PixelRatioCap
	}
	if fc.Text != nil {
		cfg.Text = *fc.Text
	}
	if fc.Image != nil {
		cfg.Image = *fc.Image
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Load reads the config file at path. A missing file yields Default. A
// relative Image path is resolved against the file's directory.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	exists, err := misc.CheckFileExists(path)
	if err != nil {
		return Default(), err
	}
	if !exists {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), err
	}

	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Image != "" && !filepath.IsAbs(cfg.Image) {
		cfg.Image = filepath.Join(filepath.Dir(path), cfg.Image)
	}

	return cfg, nil
}

// ErrNoConfigPath is returned by Watch without a path.
var ErrNoConfigPath = errors.New("config: no path to watch")
