// Package imaging recompresses receipt images before they reach object
// storage, keeping upload sizes predictable.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// MaxEdge is the longest allowed side after downscaling.
	MaxEdge = 1600

	jpegQuality = 80
)

var ErrUnsupportedImage = errors.New("unsupported_image")

// Recompress decodes a JPEG or PNG, downscales it so neither side
// exceeds MaxEdge, and re-encodes as JPEG. Smaller images are
// re-encoded without scaling.
func Recompress(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxEdge || h > MaxEdge {
		if w >= h {
			h = h * MaxEdge / w
			w = MaxEdge
		} else {
			w = w * MaxEdge / h
			h = MaxEdge
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
