package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Preview renders SVG markup centered on a square white canvas of the given
// size and returns it PNG encoded. Used for visual inspection of sanitized
// icons in debug reports.
func Preview(svgData []byte, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid preview size %d", size)
	}
	img, err := RasterizeSVGToImage(svgData, size, size)
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize icon: %w", err)
	}
	canvas := imaging.New(size, size, color.White)
	canvas = imaging.PasteCenter(canvas, img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("unable to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// Monochrome reports whether every pixel of img is a shade of gray. Masks
// keep only icon shape, so colors of non monochrome icons are lost.
func Monochrome(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A != 0 && (c.R != c.G || c.G != c.B) {
				return false
			}
		}
	}
	return true
}
