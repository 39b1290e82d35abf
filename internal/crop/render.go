package crop

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/copiiworld/cajita-go/internal/models"
)

// ErrDegenerateCrop is returned when a crop rectangle has no area after
// clamping to the source bounds.
var ErrDegenerateCrop = errors.New("crop rectangle has no area")

const jpegQuality = 90

// Measure decodes just enough of data to report the image's natural
// dimensions.
func Measure(data []byte) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Render decodes the source image, applies the crop rectangle and scales
// the result to the fixed OutputSize square, encoded as JPEG.
func Render(data []byte, r models.CropRect) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	r = Clamp(r, b.Dx(), b.Dy())
	if !r.Valid() {
		return nil, ErrDegenerateCrop
	}

	// Source rect is relative to the image's own bounds origin, which for
	// some decoders is not (0,0).
	sr := image.Rect(
		b.Min.X+r.X,
		b.Min.Y+r.Y,
		b.Min.X+r.X+r.Width,
		b.Min.Y+r.Y+r.Height,
	)

	dst := image.NewRGBA(image.Rect(0, 0, OutputSize, OutputSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
