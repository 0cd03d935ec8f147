package ffmpeg

import (
	"context"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001},
		{"0/0", 0},
		{"", 0},
		{"25/0", 0},
		{"24", 24},
		{"not-a-rate", 0},
	}
	for _, c := range cases {
		if got := parseFrameRate(c.in); got != c.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNewProberDefaultsPath(t *testing.T) {
	p := NewProber("")
	if p.ffprobePath != "ffprobe" {
		t.Errorf("expected default ffprobe path, got %q", p.ffprobePath)
	}
}

func TestIsVideoFile(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"clip.mp4", true},
		{"clip.MOV", true},
		{"photo.jpg", false},
		{"noext", false},
	}
	for _, c := range cases {
		if got := IsVideoFile(c.in); got != c.want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestProbeMissingBinaryReturnsError(t *testing.T) {
	p := NewProber("/nonexistent/ffprobe-binary")
	if _, err := p.Probe(context.Background(), "/nonexistent/file.mp4"); err == nil {
		t.Error("expected an error for a missing ffprobe binary")
	}
}
