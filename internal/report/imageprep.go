package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// loadOpaqueImage decodes an image file and composites it onto white, so
// transparent or palette scans do not come out with black holes.
func loadOpaqueImage(path string) (*image.NRGBA, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := src.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	return flatten(src), nil
}

func flatten(src image.Image) *image.NRGBA {
	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}

func encodePNG(img image.Image) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &buf, nil
}
