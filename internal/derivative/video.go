package derivative

import (
	"context"

	"github.com/scottdrichards/photrix/internal/ffmpeg"
)

// BuildVideoThumbnail produces a poster-frame JPEG for sourcePath at
// the given height and writes it to outputPath via the supplied
// encoder.
func BuildVideoThumbnail(ctx context.Context, encoder *ffmpeg.Encoder, sourcePath, outputPath string, height int) error {
	return encoder.Thumbnail(ctx, sourcePath, outputPath, height)
}

// BuildSingleStreamHLS segments sourcePath into an HLS rendition at
// height, writing playlist.m3u8 and segment files into outDir.
func BuildSingleStreamHLS(ctx context.Context, encoder *ffmpeg.Encoder, sourcePath, outDir string, height int) error {
	const segmentSeconds = 6
	return encoder.SingleStreamHLS(ctx, sourcePath, outDir, height, segmentSeconds)
}
