package metadata

import "testing"

func TestNewVideoProberEmptyPathBuildsProber(t *testing.T) {
	p := NewVideoProber("")
	if p.prober == nil {
		t.Fatal("expected a non-nil ffmpeg prober")
	}
}

func TestExtractVideoMissingBinaryReturnsNil(t *testing.T) {
	p := NewVideoProber("/nonexistent/ffprobe-binary")
	if md := p.ExtractVideo("/nonexistent/file.mp4"); md != nil {
		t.Errorf("expected nil metadata when ffprobe invocation fails, got %+v", md)
	}
}
