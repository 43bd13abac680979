// Package preprocess normalizes uploaded images before they are sent to the
// transformation service.
package preprocess

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/nemanja-m/stylize/internal/shared/config"
)

const (
	DefaultMaxDimension = 2048
	DefaultJPEGQuality  = 90
)

// Normalizer applies EXIF orientation, bounds the longest side and re-encodes
// the image. Opaque images become JPEG, images with transparency stay PNG.
type Normalizer struct {
	maxDimension int
	jpegQuality  int
}

func NewNormalizer(cfg config.PreprocessConfig) *Normalizer {
	n := &Normalizer{
		maxDimension: cfg.MaxDimension,
		jpegQuality:  cfg.JPEGQuality,
	}
	if n.maxDimension <= 0 {
		n.maxDimension = DefaultMaxDimension
	}
	if n.jpegQuality <= 0 || n.jpegQuality > 100 {
		n.jpegQuality = DefaultJPEGQuality
	}
	return n
}

func (n *Normalizer) Prepare(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > n.maxDimension || b.Dy() > n.maxDimension {
		img = imaging.Fit(img, n.maxDimension, n.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if isOpaque(img) {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.jpegQuality))
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}
