package crop_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/copiiworld/cajita-go/internal/crop"
	"github.com/copiiworld/cajita-go/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDefaultSquare(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want models.CropRect
	}{
		{"landscape", 1200, 800, models.CropRect{X: 200, Y: 0, Width: 800, Height: 800}},
		{"portrait", 800, 1200, models.CropRect{X: 0, Y: 200, Width: 800, Height: 800}},
		{"square", 500, 500, models.CropRect{X: 0, Y: 0, Width: 500, Height: 500}},
		{"odd remainder", 1201, 800, models.CropRect{X: 200, Y: 0, Width: 800, Height: 800}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crop.DefaultSquare(tt.w, tt.h)
			if got != tt.want {
				t.Errorf("DefaultSquare(%d, %d) = %+v, want %+v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   models.CropRect
		want models.CropRect
	}{
		{"inside", models.CropRect{X: 10, Y: 10, Width: 50, Height: 50}, models.CropRect{X: 10, Y: 10, Width: 50, Height: 50}},
		{"negative origin", models.CropRect{X: -20, Y: -10, Width: 50, Height: 50}, models.CropRect{X: 0, Y: 0, Width: 30, Height: 40}},
		{"overflow", models.CropRect{X: 80, Y: 90, Width: 50, Height: 50}, models.CropRect{X: 80, Y: 90, Width: 20, Height: 10}},
		{"fully outside", models.CropRect{X: 200, Y: 200, Width: 50, Height: 50}, models.CropRect{X: 200, Y: 200, Width: 0, Height: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crop.Clamp(tt.in, 100, 100)
			if got != tt.want {
				t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMeasure(t *testing.T) {
	data := pngBytes(t, 320, 200)
	w, h, err := crop.Measure(data)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if w != 320 || h != 200 {
		t.Errorf("Measure = %dx%d, want 320x200", w, h)
	}

	if _, _, err := crop.Measure([]byte("not an image")); err == nil {
		t.Error("Measure on garbage should fail")
	}
}

func TestRenderFixedSize(t *testing.T) {
	data := pngBytes(t, 640, 480)
	out, err := crop.Render(data, models.CropRect{X: 80, Y: 0, Width: 480, Height: 480})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode rendered output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("output format = %q, want jpeg", format)
	}
	if cfg.Width != crop.OutputSize || cfg.Height != crop.OutputSize {
		t.Errorf("output = %dx%d, want %dx%d", cfg.Width, cfg.Height, crop.OutputSize, crop.OutputSize)
	}
}

func TestRenderDegenerateCrop(t *testing.T) {
	data := pngBytes(t, 100, 100)
	if _, err := crop.Render(data, models.CropRect{X: 500, Y: 500, Width: 50, Height: 50}); err == nil {
		t.Error("Render with a crop outside the image should fail")
	}
	if _, err := crop.Render(data, models.CropRect{}); err == nil {
		t.Error("Render with a zero crop should fail")
	}
}
