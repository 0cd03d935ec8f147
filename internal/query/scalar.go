package query

import (
	"strconv"
	"strings"

	"github.com/scottdrichards/photrix/internal/record"
)

// scalarAccessors names every field the generic ScalarPredicate clause
// can reach, mapping a field name to a function extracting its value
// (a string or a float64) from a record. A field absent from this map
// never matches; a field present whose accessor returns ok=false is
// treated as missing (so IsNull matches it).
var scalarAccessors = map[string]func(r *record.Record) (value any, ok bool){
	"path":      func(r *record.Record) (any, bool) { return stringValue(r.RelativePath) },
	"filename":  func(r *record.Record) (any, bool) { return stringValue(r.Name) },
	"directory": func(r *record.Record) (any, bool) { return stringValue(r.Directory) },
	"mime_type": func(r *record.Record) (any, bool) { return stringValue(r.MimeType) },
	"size":      func(r *record.Record) (any, bool) { return numberValue(float64(r.Size), r.Size != 0) },

	"camera_make":   func(r *record.Record) (any, bool) { return stringValue(imageString(r, func(m *record.ImageMetadata) string { return m.CameraMake })) },
	"camera_model":  func(r *record.Record) (any, bool) { return stringValue(imageString(r, func(m *record.ImageMetadata) string { return m.CameraModel })) },
	"lens":          func(r *record.Record) (any, bool) { return stringValue(imageString(r, func(m *record.ImageMetadata) string { return m.Lens })) },
	"exposure_time": func(r *record.Record) (any, bool) { return stringValue(imageString(r, func(m *record.ImageMetadata) string { return m.ExposureTime })) },
	"aperture":      func(r *record.Record) (any, bool) { return stringValue(imageString(r, func(m *record.ImageMetadata) string { return m.Aperture })) },
	"focal_length":  func(r *record.Record) (any, bool) { return stringValue(imageString(r, func(m *record.ImageMetadata) string { return m.FocalLength })) },
	"iso": func(r *record.Record) (any, bool) {
		if r.Metadata == nil || r.Metadata.Image == nil || r.Metadata.Image.ISO == 0 {
			return nil, false
		}
		return float64(r.Metadata.Image.ISO), true
	},
	"rating": func(r *record.Record) (any, bool) {
		if r.Metadata == nil || r.Metadata.Image == nil {
			return nil, false
		}
		return float64(r.Metadata.Image.Rating), true
	},

	"video_codec": func(r *record.Record) (any, bool) { return stringValue(videoString(r, func(m *record.VideoMetadata) string { return m.VideoCodec })) },
	"audio_codec": func(r *record.Record) (any, bool) { return stringValue(videoString(r, func(m *record.VideoMetadata) string { return m.AudioCodec })) },
	"duration": func(r *record.Record) (any, bool) {
		if r.Metadata == nil || r.Metadata.Video == nil || r.Metadata.Video.Duration == 0 {
			return nil, false
		}
		return r.Metadata.Video.Duration, true
	},
	"framerate": func(r *record.Record) (any, bool) {
		if r.Metadata == nil || r.Metadata.Video == nil || r.Metadata.Video.FrameRate == 0 {
			return nil, false
		}
		return r.Metadata.Video.FrameRate, true
	},
	"width":  func(r *record.Record) (any, bool) { return dimensionValue(r, func(d *record.Dimensions) int { return d.Width }) },
	"height": func(r *record.Record) (any, bool) { return dimensionValue(r, func(d *record.Dimensions) int { return d.Height }) },
}

func stringValue(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

func numberValue(n float64, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return n, true
}

func imageString(r *record.Record, get func(*record.ImageMetadata) string) string {
	if r.Metadata == nil || r.Metadata.Image == nil {
		return ""
	}
	return get(r.Metadata.Image)
}

func videoString(r *record.Record, get func(*record.VideoMetadata) string) string {
	if r.Metadata == nil || r.Metadata.Video == nil {
		return ""
	}
	return get(r.Metadata.Video)
}

func dimensionValue(r *record.Record, get func(*record.Dimensions) int) (any, bool) {
	var dims *record.Dimensions
	if r.Metadata != nil {
		if r.Metadata.Image != nil {
			dims = r.Metadata.Image.Dimensions
		} else if r.Metadata.Video != nil {
			dims = r.Metadata.Video.Dimensions
		}
	}
	if dims == nil {
		return nil, false
	}
	return float64(get(dims)), true
}

// matchScalarPredicate applies pred to the named field on r.
func matchScalarPredicate(field string, pred ScalarPredicate, r *record.Record) bool {
	accessor, ok := scalarAccessors[field]
	if !ok {
		return false
	}
	value, present := accessor(r)
	if pred.IsNull {
		return !present
	}
	if !present {
		return false
	}
	switch v := value.(type) {
	case string:
		return matchStringPredicate(pred, v)
	case float64:
		return matchNumericPredicate(pred, v)
	default:
		return false
	}
}

func matchStringPredicate(pred ScalarPredicate, v string) bool {
	if pred.Equals != nil && !strings.EqualFold(*pred.Equals, v) {
		return false
	}
	if pred.StartsWith != nil && !strings.HasPrefix(strings.ToLower(v), strings.ToLower(*pred.StartsWith)) {
		return false
	}
	if pred.NotStartsWith != nil && strings.HasPrefix(strings.ToLower(v), strings.ToLower(*pred.NotStartsWith)) {
		return false
	}
	return true
}

func matchNumericPredicate(pred ScalarPredicate, v float64) bool {
	if pred.Equals != nil {
		f, err := strconv.ParseFloat(*pred.Equals, 64)
		if err != nil || f != v {
			return false
		}
	}
	if pred.Min != nil && v < *pred.Min {
		return false
	}
	if pred.Max != nil && v > *pred.Max {
		return false
	}
	return true
}
