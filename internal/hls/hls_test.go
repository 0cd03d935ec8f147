package hls

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePlaylist(t *testing.T, dir string, segments int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n")
	for i := 0; i < segments; i++ {
		b.WriteString("#EXTINF:6.0,\n")
		b.WriteString("segment_00" + string(rune('0'+i)) + ".ts\n")
	}
	if err := os.WriteFile(filepath.Join(dir, "playlist.m3u8"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWaitForSegmentsReturnsOnceThresholdMet(t *testing.T) {
	dir := t.TempDir()
	writePlaylist(t, dir, 1)

	done := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond)
		writePlaylist(t, dir, 3)
		close(done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := WaitForSegments(ctx, dir, 3); err != nil {
		t.Fatalf("expected WaitForSegments to succeed, got %v", err)
	}
	<-done
}

func TestWaitForSegmentsTimesOut(t *testing.T) {
	dir := t.TempDir()
	writePlaylist(t, dir, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := WaitForSegments(ctx, dir, 5); err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestRewriteSegmentURIsLeavesTagsAlone(t *testing.T) {
	input := "#EXTM3U\n#EXTINF:6.0,\nsegment_000.ts\n#EXTINF:6.0,\nsegment_001.ts\n#EXT-X-ENDLIST\n"
	got := RewriteSegmentURIs(input, func(name string) string {
		return "/files/video.mp4?representation=hls&segment=" + name
	})
	if !strings.Contains(got, "/files/video.mp4?representation=hls&segment=segment_000.ts") {
		t.Fatalf("expected rewritten segment URI, got:\n%s", got)
	}
	if !strings.Contains(got, "#EXT-X-ENDLIST") {
		t.Fatalf("expected tags preserved, got:\n%s", got)
	}
}

func TestBuildMasterPlaylistIncludesEachRendition(t *testing.T) {
	playlist, err := BuildMasterPlaylist([]Rendition{
		{Height: 480, Bandwidth: 800_000, PlaylistURI: "480/playlist.m3u8"},
		{Height: 1080, Bandwidth: 3_000_000, PlaylistURI: "1080/playlist.m3u8"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(playlist, "480/playlist.m3u8") || !strings.Contains(playlist, "1080/playlist.m3u8") {
		t.Fatalf("expected both rendition URIs present, got:\n%s", playlist)
	}
	if !strings.Contains(playlist, "#EXT-X-STREAM-INF") {
		t.Fatalf("expected stream-inf tags, got:\n%s", playlist)
	}
}
