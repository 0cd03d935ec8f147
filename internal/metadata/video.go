package metadata

import (
	"context"
	"time"

	"github.com/scottdrichards/photrix/internal/ffmpeg"
	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/record"
)

// VideoProber extracts duration/codec/framerate metadata from video
// files via an ffmpeg.Prober.
type VideoProber struct {
	prober  *ffmpeg.Prober
	timeout time.Duration
}

// NewVideoProber creates a VideoProber that invokes the given ffprobe
// binary (a bare name is resolved against PATH).
func NewVideoProber(ffprobePath string) *VideoProber {
	return &VideoProber{prober: ffmpeg.NewProber(ffprobePath), timeout: 30 * time.Second}
}

// ExtractVideo probes an absolute file path and returns its
// VideoMetadata. Like ExtractImage, it never returns an error: probe
// failures are logged and nil is returned so the indexer can still
// emit a Full record with only baseline stats.
func (p *VideoProber) ExtractVideo(path string) *record.VideoMetadata {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	probed, err := p.prober.Probe(ctx, path)
	if err != nil {
		logger.Warn("video metadata: probe failed", "path", path, "error", err)
		return nil
	}

	if probed.VideoCodec == "" && probed.Duration == 0 {
		logger.Warn("video metadata: no usable streams", "path", path)
		return nil
	}

	md := &record.VideoMetadata{
		Duration:   probed.Duration.Seconds(),
		FrameRate:  probed.FrameRate,
		VideoCodec: probed.VideoCodec,
		AudioCodec: probed.AudioCodec,
	}
	if probed.Width > 0 && probed.Height > 0 {
		md.Dimensions = &record.Dimensions{Width: probed.Width, Height: probed.Height}
	}

	return md
}
