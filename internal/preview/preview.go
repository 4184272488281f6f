package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxWidth    = 300
	maxHeight   = 300
	jpegQuality = 85
)

// Generate produces the downscaled copy of an uploaded image that is stored
// alongside the original for low-bandwidth display. The image is fit into a
// 300x300 bounding box preserving aspect ratio (never upscaled) and re-encoded
// as JPEG at quality 85 regardless of the input format.
func Generate(fileBytes []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(fileBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode uploaded image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxWidth || height > maxHeight {
		scaleW := float64(maxWidth) / float64(width)
		scaleH := float64(maxHeight) / float64(height)
		scale := scaleW
		if scaleH < scale {
			scale = scaleH
		}

		newWidth := int(float64(width) * scale)
		newHeight := int(float64(height) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return out.Bytes(), nil
}
