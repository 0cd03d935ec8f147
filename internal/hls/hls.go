// Package hls assembles and rewrites HTTP Live Streaming playlists for
// the derivative server. Segment encoding itself happens in
// internal/ffmpeg; this package only deals with playlist text: waiting
// for a single-stream job to produce enough segments to serve, rewriting
// segment URIs to route back through the API, and building the master
// playlist for a pre-encoded multi-bitrate ladder.
package hls

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WaitForSegments polls dir until its playlist.m3u8 references at
// least minSegments segments, or ctx is done. It returns immediately
// once the threshold is met so the dispatcher can start serving a
// still-encoding stream rather than waiting for completion.
func WaitForSegments(ctx context.Context, dir string, minSegments int) error {
	playlist := filepath.Join(dir, "playlist.m3u8")
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if n, err := countSegments(playlist); err == nil && n >= minSegments {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("hls: timed out waiting for %d segments in %s: %w", minSegments, dir, ctx.Err())
		case <-ticker.C:
		}
	}
}

func countSegments(playlist string) (int, error) {
	f, err := os.Open(playlist)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			count++
		}
	}
	return count, scanner.Err()
}

// RewriteSegmentURIs reads a media playlist and rewrites every segment
// URI through rewrite, so clients fetch segments from the API rather
// than the cache's filesystem layout directly. Unlike a full m3u8
// parse/re-encode round trip, this preserves every tag ffmpeg wrote
// (including ones this package doesn't model) by only touching lines
// that are bare segment references.
func RewriteSegmentURIs(playlistText string, rewrite func(segmentName string) string) string {
	lines := strings.Split(playlistText, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines[i] = rewrite(trimmed)
	}
	return strings.Join(lines, "\n")
}
