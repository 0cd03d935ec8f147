package hls

import (
	"fmt"
	"sort"

	"github.com/grafov/m3u8"
)

// Rendition describes one height in a pre-encoded multi-bitrate ladder.
type Rendition struct {
	Height      int
	Bandwidth   uint32 // bits per second, approximate
	PlaylistURI string
}

// BuildMasterPlaylist renders the master playlist for a multi-bitrate
// ladder, one EXT-X-STREAM-INF entry per rendition in ascending height
// order.
func BuildMasterPlaylist(renditions []Rendition) (string, error) {
	sorted := append([]Rendition(nil), renditions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })

	master := m3u8.NewMasterPlaylist()
	for _, r := range sorted {
		master.Append(r.PlaylistURI, nil, m3u8.VariantParams{
			Bandwidth:  r.Bandwidth,
			Resolution: fmt.Sprintf("%dx%d", r.Height*16/9, r.Height),
			Name:       fmt.Sprintf("%dp", r.Height),
		})
	}
	return master.Encode().String(), nil
}
