package query

import "github.com/scottdrichards/photrix/internal/record"

// Item is a query result entry: the identifying fields plus a
// projected metadata view.
type Item struct {
	RelativePath string                 `json:"relative_path"`
	Directory    string                 `json:"directory"`
	Name         string                 `json:"name"`
	Metadata     map[string]any         `json:"metadata,omitempty"`
}

// fullMetadataMap flattens a record's available metadata (plus the
// promotable record-level fields) into a single key/value map.
func fullMetadataMap(r *record.Record) map[string]any {
	m := map[string]any{
		"size":      r.Size,
		"mime_type": r.MimeType,
	}
	if r.DateCreated != nil {
		m["date_created"] = *r.DateCreated
	}
	if r.Metadata == nil {
		return m
	}
	if img := r.Metadata.Image; img != nil {
		if img.Dimensions != nil {
			m["dimensions"] = *img.Dimensions
		}
		if img.DateTaken != nil {
			m["date_taken"] = *img.DateTaken
		}
		if img.Location != nil {
			m["location"] = *img.Location
		}
		if img.CameraMake != "" {
			m["camera_make"] = img.CameraMake
		}
		if img.CameraModel != "" {
			m["camera_model"] = img.CameraModel
		}
		if img.ExposureTime != "" {
			m["exposure_time"] = img.ExposureTime
		}
		if img.Aperture != "" {
			m["aperture"] = img.Aperture
		}
		if img.ISO != 0 {
			m["iso"] = img.ISO
		}
		if img.FocalLength != "" {
			m["focal_length"] = img.FocalLength
		}
		if img.Lens != "" {
			m["lens"] = img.Lens
		}
		if img.Rating != 0 {
			m["rating"] = img.Rating
		}
		if len(img.Tags) > 0 {
			m["tags"] = img.Tags
		}
	}
	if vid := r.Metadata.Video; vid != nil {
		if vid.Dimensions != nil {
			m["dimensions"] = *vid.Dimensions
		}
		m["duration"] = vid.Duration
		m["framerate"] = vid.FrameRate
		if vid.VideoCodec != "" {
			m["video_codec"] = vid.VideoCodec
		}
		if vid.AudioCodec != "" {
			m["audio_codec"] = vid.AudioCodec
		}
	}
	return m
}

// ProjectItem builds an Item from a record. A nil keys slice means
// "no projection requested" (every available key is included); a
// non-nil, possibly-empty slice restricts the metadata view to exactly
// those keys that are present.
func ProjectItem(r *record.Record, keys []string) Item {
	item := Item{
		RelativePath: r.RelativePath,
		Directory:    r.Directory,
		Name:         r.Name,
	}

	full := fullMetadataMap(r)
	if keys == nil {
		item.Metadata = full
		return item
	}
	if len(keys) == 0 {
		return item
	}
	subset := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := full[k]; ok {
			subset[k] = v
		}
	}
	if len(subset) > 0 {
		item.Metadata = subset
	}
	return item
}
