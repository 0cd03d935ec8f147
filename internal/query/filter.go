// Package query evaluates composed filters over indexed records,
// sorts, paginates, and projects selected metadata fields, and computes
// clustering/histogram aggregations over the same filtered set.
package query

import (
	"math"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/scottdrichards/photrix/internal/pathutil"
	"github.com/scottdrichards/photrix/internal/record"
)

// BBox is an inclusive geographic bounding box. A nil bound is
// unbounded on that side (±∞).
type BBox struct {
	MinLat, MaxLat *float64
	MinLon, MaxLon *float64
}

// DateRange bounds a comparison against a record's best-known date.
// Nil bounds are unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// RatingFilter is either an explicit set of acceptable values (OR'd) or
// an inclusive {min,max} range. Only one form should be set.
type RatingFilter struct {
	Values   []int
	Min, Max *int
}

// ScalarPredicate applies a generic operator to a single named scalar
// field, letting a composed filter reach any scalar metadata field —
// iso, focal_length, duration, or anything else scalarAccessors knows
// about — not just the ones with a dedicated clause above. Only one of
// Equals/StartsWith/NotStartsWith/Min/Max need be set; IsNull matches a
// record where the field is absent instead of comparing a value.
type ScalarPredicate struct {
	Equals        *string
	StartsWith    *string
	NotStartsWith *string
	Min           *float64
	Max           *float64
	IsNull        bool
}

// Filter is a single AND-composed clause set, matching the leaf filter
// semantics: within a clause the listed values are OR-composed.
type Filter struct {
	Path         []string
	Filename     []string
	Directory    []string
	MimeType     []string
	CameraMake   []string
	CameraModel  []string
	Location     *BBox
	DateRange    *DateRange
	Rating       *RatingFilter
	Tags         []string
	TagsMatchAll bool
	Q            string

	// Scalars holds one ScalarPredicate per field name (e.g.
	// "iso", "camera_make", "duration"); every entry must match.
	Scalars map[string]ScalarPredicate
}

// Matches reports whether r satisfies every populated clause in f.
// Non-Full records never match.
func (f *Filter) Matches(r *record.Record) bool {
	if f == nil {
		return r.IsFull()
	}
	if !r.IsFull() {
		return false
	}

	if len(f.Path) > 0 && !matchAnyLiteralOrGlob(f.Path, r.RelativePath) {
		return false
	}
	if len(f.Filename) > 0 && !matchFilename(f.Filename, r) {
		return false
	}
	if len(f.Directory) > 0 && !matchDirectory(f.Directory, r.Directory) {
		return false
	}
	if len(f.MimeType) > 0 && !matchAnyLiteralOrGlob(f.MimeType, r.MimeType) {
		return false
	}
	if len(f.CameraMake) > 0 && !matchAnyCI(f.CameraMake, imageField(r, func(m *record.ImageMetadata) string { return m.CameraMake })) {
		return false
	}
	if len(f.CameraModel) > 0 && !matchAnyCI(f.CameraModel, imageField(r, func(m *record.ImageMetadata) string { return m.CameraModel })) {
		return false
	}
	if f.Location != nil && !matchLocation(f.Location, r) {
		return false
	}
	if f.DateRange != nil && !matchDateRange(f.DateRange, r) {
		return false
	}
	if f.Rating != nil && !matchRating(f.Rating, r) {
		return false
	}
	if len(f.Tags) > 0 && !matchTags(f.Tags, f.TagsMatchAll, r) {
		return false
	}
	if q := strings.TrimSpace(f.Q); q != "" && !matchFreeText(q, r) {
		return false
	}
	for field, pred := range f.Scalars {
		if !matchScalarPredicate(field, pred, r) {
			return false
		}
	}
	return true
}

// orInf returns *v, or an infinity of the given sign if v is nil.
func orInf(v *float64, sign float64) float64 {
	if v == nil {
		return math.Inf(int(sign))
	}
	return *v
}

func imageField(r *record.Record, get func(*record.ImageMetadata) string) string {
	if r.Metadata == nil || r.Metadata.Image == nil {
		return ""
	}
	return get(r.Metadata.Image)
}

func isGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[]{}")
}

func compileGlob(pattern string) (glob.Glob, error) {
	return glob.Compile(strings.ToLower(pattern))
}

func matchAnyLiteralOrGlob(patterns []string, value string) bool {
	lowerValue := strings.ToLower(value)
	for _, p := range patterns {
		if isGlobPattern(p) {
			g, err := compileGlob(p)
			if err != nil {
				continue
			}
			if g.Match(lowerValue) {
				return true
			}
			continue
		}
		if strings.EqualFold(p, value) {
			return true
		}
	}
	return false
}

func matchAnyCI(patterns []string, value string) bool {
	for _, p := range patterns {
		if strings.EqualFold(p, value) {
			return true
		}
	}
	return false
}

// matchFilename implements the filename[] clause: a literal matches
// the base name; a glob without "/" matches the base name; a glob
// containing "/" matches the full relative path.
func matchFilename(patterns []string, r *record.Record) bool {
	base := pathutil.Base(r.RelativePath)
	for _, p := range patterns {
		if isGlobPattern(p) {
			g, err := compileGlob(p)
			if err != nil {
				continue
			}
			target := base
			if strings.Contains(p, "/") {
				target = r.RelativePath
			}
			if g.Match(strings.ToLower(target)) {
				return true
			}
			continue
		}
		if strings.EqualFold(p, base) {
			return true
		}
	}
	return false
}

// matchDirectory implements the directory[] clause: a literal matches
// the record's directory exactly or as a "dir/..." descendant; a glob
// matches the directory string; an empty literal matches root-level
// files only.
func matchDirectory(patterns []string, directory string) bool {
	for _, p := range patterns {
		if isGlobPattern(p) {
			g, err := compileGlob(p)
			if err != nil {
				continue
			}
			if g.Match(strings.ToLower(directory)) {
				return true
			}
			continue
		}
		if p == "" {
			if directory == "" {
				return true
			}
			continue
		}
		if strings.EqualFold(p, directory) || strings.HasPrefix(strings.ToLower(directory), strings.ToLower(p)+"/") {
			return true
		}
	}
	return false
}

func matchLocation(b *BBox, r *record.Record) bool {
	if r.Metadata == nil || r.Metadata.Image == nil || r.Metadata.Image.Location == nil {
		return false
	}
	loc := r.Metadata.Image.Location

	minLat, maxLat := orInf(b.MinLat, -1), orInf(b.MaxLat, 1)
	if loc.Lat < minLat || loc.Lat > maxLat {
		return false
	}

	west, east := orInf(b.MinLon, -1), orInf(b.MaxLon, 1)
	if west <= east {
		return loc.Lon >= west && loc.Lon <= east
	}
	// Antimeridian split: west > east means the box wraps across ±180.
	return loc.Lon >= west || loc.Lon <= east
}

func matchDateRange(dr *DateRange, r *record.Record) bool {
	d := r.DateTaken()
	if d == nil {
		return false
	}
	if dr.Start != nil && d.Before(*dr.Start) {
		return false
	}
	if dr.End != nil && d.After(*dr.End) {
		return false
	}
	return true
}

func matchRating(rf *RatingFilter, r *record.Record) bool {
	if r.Metadata == nil || r.Metadata.Image == nil {
		return false
	}
	rating := r.Metadata.Image.Rating
	if len(rf.Values) > 0 {
		for _, v := range rf.Values {
			if v == rating {
				return true
			}
		}
		return false
	}
	if rf.Min != nil && rating < *rf.Min {
		return false
	}
	if rf.Max != nil && rating > *rf.Max {
		return false
	}
	return true
}

func matchTags(wanted []string, matchAll bool, r *record.Record) bool {
	if r.Metadata == nil || r.Metadata.Image == nil || len(r.Metadata.Image.Tags) == 0 {
		return false
	}
	have := make(map[string]bool, len(r.Metadata.Image.Tags))
	for _, t := range r.Metadata.Image.Tags {
		have[strings.ToLower(t)] = true
	}
	if matchAll {
		for _, w := range wanted {
			if !have[strings.ToLower(w)] {
				return false
			}
		}
		return true
	}
	for _, w := range wanted {
		if have[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

func matchFreeText(q string, r *record.Record) bool {
	needle := strings.ToLower(q)
	for _, tok := range tokenBag(r) {
		if strings.Contains(strings.ToLower(tok), needle) {
			return true
		}
	}
	return false
}

// tokenBag builds the free-text search corpus for a record: path,
// name, directory, mime, the string-valued image and video metadata
// fields, and image tags. Numeric and date metadata values (ISO,
// rating, dimensions, duration, dates and the like) are not included.
func tokenBag(r *record.Record) []string {
	toks := []string{r.RelativePath, r.Name, r.Directory, r.MimeType}
	if r.Metadata == nil {
		return toks
	}
	if img := r.Metadata.Image; img != nil {
		toks = append(toks, img.CameraMake, img.CameraModel, img.Lens, img.ExposureTime, img.Aperture, img.FocalLength)
		toks = append(toks, img.Tags...)
	}
	if vid := r.Metadata.Video; vid != nil {
		toks = append(toks, vid.VideoCodec, vid.AudioCodec)
	}
	return toks
}
