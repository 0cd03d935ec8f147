package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scottdrichards/photrix/internal/logger"
)

// Encoder wraps ffmpeg invocation for producing display derivatives:
// video poster thumbnails and HLS segments. Unlike a transcode-for-
// storage tool, every output here targets a fixed display height and
// is disposable (regenerable from the source at any time).
type Encoder struct {
	ffmpegPath string
}

// NewEncoder creates an Encoder that invokes the given ffmpeg binary
// (a bare name is resolved against PATH).
func NewEncoder(ffmpegPath string) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Encoder{ffmpegPath: ffmpegPath}
}

// Thumbnail decodes one frame near the start of sourcePath, scales it
// to height (preserving aspect ratio, width rounded to an even number),
// and writes a JPEG to outputPath.
func (e *Encoder) Thumbnail(ctx context.Context, sourcePath, outputPath string, height int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	scale := fmt.Sprintf("scale=-2:%d", height)
	args := []string{
		"-y",
		"-ss", "1",
		"-i", sourcePath,
		"-frames:v", "1",
		"-vf", scale,
		"-q:v", "4",
		outputPath,
	}

	return e.run(ctx, args)
}

// SingleStreamHLS segments sourcePath into an HLS stream at height,
// writing playlist.m3u8 and segment_NNN.ts files incrementally into
// outDir as ffmpeg produces them.
func (e *Encoder) SingleStreamHLS(ctx context.Context, sourcePath, outDir string, height int, segmentSeconds int) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create hls dir: %w", err)
	}

	playlist := filepath.Join(outDir, "playlist.m3u8")
	segmentPattern := filepath.Join(outDir, "segment_%03d.ts")

	args := []string{
		"-y",
		"-i", sourcePath,
		"-vf", fmt.Sprintf("scale=-2:%d", height),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-hls_time", strconv.Itoa(segmentSeconds),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", segmentPattern,
		playlist,
	}

	return e.run(ctx, args)
}

func (e *Encoder) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	logger.Debug("ffmpeg command", "args", strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
		tail := lines
		if len(lines) > 5 {
			tail = lines[len(lines)-5:]
		}
		logger.Error("ffmpeg failed", "error", err, "stderr", strings.Join(tail, " | "))
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}
