package texsrc

import (
	"go.uber.org/zap"

	"softhorizon/config"
	"softhorizon/core"
)

// Source is a texture source whose background renders can be awaited.
type Source interface {
	core.TextureSource
	Wait()
}

func TextStyleFromConfig(cfg config.Config) TextStyle {
	return TextStyle{
		Text:          cfg.Text,
		Background:    cfg.ClearColor,
		Foreground:    cfg.TextColor,
		FontSizeRatio: cfg.FontSizeRatio,
	}
}

// FromConfig returns an ImageSource when cfg names an image and a
// TextSource otherwise. An image that cannot be loaded is logged and the
// text source is used instead.
func FromConfig(cfg config.Config, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Image != "" {
		img, err := LoadImageFile(cfg.Image)
		if err == nil {
			return NewImageSource(img, logger), nil
		}
		logger.Warn("falling back to text source", zap.String("image", cfg.Image), zap.Error(err))
	}

	s, err := NewTextSource(TextStyleFromConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}
