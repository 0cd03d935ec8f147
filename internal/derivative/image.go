package derivative

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const imageJPEGQuality = 80

// BuildImageDerivative decodes sourcePath, fits it within height pixels
// tall without upscaling beyond the original, and writes a JPEG to
// outputPath. A source that fails to decode as an image returns
// ErrInvalidSource.
func BuildImageDerivative(sourcePath, outputPath string, height int) (int64, error) {
	src, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	targetHeight := height
	if b := src.Bounds(); b.Dy() < height {
		targetHeight = b.Dy() // never upscale
	}
	resized := imaging.Resize(src, 0, targetHeight, imaging.Lanczos)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return 0, fmt.Errorf("create derivative dir: %w", err)
	}
	if err := imaging.Save(resized, outputPath, imaging.JPEGQuality(imageJPEGQuality)); err != nil {
		return 0, fmt.Errorf("encode derivative: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
