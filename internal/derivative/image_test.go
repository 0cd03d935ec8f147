package derivative

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func writeTestJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func TestBuildImageDerivativeResizesAndEncodes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.jpg")
	writeTestJPEG(t, src, 800, 600)

	out := filepath.Join(dir, "cache", "abc", "320.jpg")
	size, err := BuildImageDerivative(src, out, 320)
	if err != nil {
		t.Fatal(err)
	}
	if size <= 0 {
		t.Fatal("expected a nonzero output size")
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dy() != 320 {
		t.Fatalf("expected height 320, got %d", decoded.Bounds().Dy())
	}
}

func TestBuildImageDerivativeNeverUpscales(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.jpg")
	writeTestJPEG(t, src, 100, 80)

	out := filepath.Join(dir, "cache", "xyz", "2160.jpg")
	if _, err := BuildImageDerivative(src, out, 2160); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dy() != 80 {
		t.Fatalf("expected source height preserved at 80, got %d", decoded.Bounds().Dy())
	}
}

func TestBuildImageDerivativeInvalidSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "not-an-image.jpg")
	if err := os.WriteFile(src, []byte("not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := BuildImageDerivative(src, filepath.Join(dir, "out.jpg"), 320)
	if !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
}
