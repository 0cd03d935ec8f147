package metadata

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/record"
)

// ExtractImage parses EXIF metadata (via goexif) from an absolute file
// path, falling back to the image header for dimensions; XMP and IPTC
// blocks are not read. It never returns an error to the caller: extraction failures
// are logged and nil is returned so the indexer can still emit a Full
// record with only baseline stats.
func ExtractImage(path string) *record.ImageMetadata {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("image metadata: open failed", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	md := &record.ImageMetadata{}

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF (or unparseable) — fall back to decoding just the image
		// header for dimensions, never the pixel data.
		if _, err := f.Seek(0, 0); err == nil {
			if dim := decodeHeaderDimensions(f); dim != nil {
				md.Dimensions = dim
			}
		}
		if md.Dimensions == nil {
			logger.Warn("image metadata: no exif and header decode failed", "path", path)
			return nil
		}
		return md
	}

	populateFromExif(md, x)

	if md.Dimensions == nil {
		if _, err := f.Seek(0, 0); err == nil {
			md.Dimensions = decodeHeaderDimensions(f)
		}
	}

	return md
}

func decodeHeaderDimensions(f *os.File) *record.Dimensions {
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil
	}
	return &record.Dimensions{Width: cfg.Width, Height: cfg.Height}
}

func populateFromExif(md *record.ImageMetadata, x *exif.Exif) {
	if w, h, ok := pixelDimensions(x); ok {
		md.Dimensions = &record.Dimensions{Width: w, Height: h}
	}

	if dt := dateTaken(x); dt != nil {
		md.DateTaken = dt
	}

	if lat, lon, err := x.LatLong(); err == nil {
		md.Location = &record.Location{Lat: lat, Lon: lon}
	}

	md.CameraMake = tagString(x, exif.Make)
	md.CameraModel = tagString(x, exif.Model)
	md.Lens = tagString(x, exif.LensModel)

	if exposure, ok := tagRational(x, exif.ExposureTime); ok {
		md.ExposureTime = FormatExposureTime(exposure)
	}
	if aperture, ok := tagRational(x, exif.FNumber); ok {
		md.Aperture = FormatAperture(aperture)
	}
	if focal, ok := tagRational(x, exif.FocalLength); ok {
		md.FocalLength = FormatFocalLength(focal)
	}
	if iso, ok := tagInt(x, exif.ISOSpeedRatings); ok {
		md.ISO = iso
	}

	if rating, ok := tagInt(x, exif.FieldName("Rating")); ok {
		md.Rating = rating
	}

	md.Tags = extractKeywords(x)
}

// pixelDimensions reads PixelXDimension/PixelYDimension (set by most
// cameras in the Exif IFD), falling back to the primary ImageWidth/
// ImageLength tags.
func pixelDimensions(x *exif.Exif) (int, int, bool) {
	w, wok := tagInt(x, exif.PixelXDimension)
	h, hok := tagInt(x, exif.PixelYDimension)
	if wok && hok {
		return w, h, true
	}
	w, wok = tagInt(x, exif.ImageWidth)
	h, hok = tagInt(x, exif.ImageLength)
	if wok && hok {
		return w, h, true
	}
	return 0, 0, false
}

// dateTaken resolves EXIF original capture time, falling back to the
// digitized ("create") date.
func dateTaken(x *exif.Exif) *time.Time {
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized} {
		if s := tagString(x, field); s != "" {
			if t, err := time.Parse("2006:01:02 15:04:05", s); err == nil {
				utc := t.UTC()
				return &utc
			}
		}
	}
	return nil
}

func extractKeywords(x *exif.Exif) []string {
	raw := tagString(x, exif.FieldName("XPKeywords"))
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == 0
	})
	seen := make(map[string]bool, len(parts))
	var tags []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		tags = append(tags, t)
	}
	return tags
}

// tagString coerces a tag's value to a string, accepting ASCII/UNICODE
// string tags as well as numeric ones.
func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return strings.Trim(tag.String(), `"`)
	}
	return strings.TrimRight(s, "\x00")
}

// tagInt coerces a tag's value to an int, accepting both INT and
// numeric-STRING encodings.
func tagInt(x *exif.Exif, name exif.FieldName) (int, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	if i, err := tag.Int(0); err == nil {
		return i, true
	}
	if s, err := tag.StringVal(); err == nil {
		var i int
		if _, serr := fmt.Sscanf(s, "%d", &i); serr == nil {
			return i, true
		}
	}
	return 0, false
}

// tagRational resolves an EXIF RATIONAL tag to its float value.
func tagRational(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}
