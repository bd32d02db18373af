package svg

import (
	"bytes"
	"fmt"
	"image"

	// register decoders for formats icons are commonly mistaken for
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// describeBinary returns short description of binary content for error
// messages. Raster images get their dimensions.
func describeBinary(data []byte, mime string) string {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return mime
	}
	return fmt.Sprintf("%s raster %dx%d", mime, cfg.Width, cfg.Height)
}
