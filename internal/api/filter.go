package api

import (
	"encoding/json"

	"github.com/scottdrichards/photrix/internal/query"
)

// filterRequest mirrors query.Filter's leaf fields plus and/or
// composition, so a single JSON shape can describe either a leaf
// clause or a boolean tree of them.
type filterRequest struct {
	And []filterRequest `json:"and,omitempty"`
	Or  []filterRequest `json:"or,omitempty"`

	Path         []string            `json:"path,omitempty"`
	Filename     []string            `json:"filename,omitempty"`
	Directory    []string            `json:"directory,omitempty"`
	MimeType     []string            `json:"mime_type,omitempty"`
	CameraMake   []string            `json:"camera_make,omitempty"`
	CameraModel  []string            `json:"camera_model,omitempty"`
	Location     *query.BBox         `json:"location,omitempty"`
	DateRange    *query.DateRange    `json:"date_range,omitempty"`
	Rating       *query.RatingFilter `json:"rating,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	TagsMatchAll bool                `json:"tags_match_all,omitempty"`
	Q            string              `json:"q,omitempty"`

	// Fields carries generic predicate operators (min/max/startsWith/
	// notStartsWith/equals/null) keyed by scalar field name, reaching
	// fields with no dedicated clause above (iso, focal_length, ...).
	Fields map[string]scalarPredicateRequest `json:"fields,omitempty"`
}

// scalarPredicateRequest mirrors query.ScalarPredicate on the wire.
type scalarPredicateRequest struct {
	Equals        *string  `json:"equals,omitempty"`
	StartsWith    *string  `json:"startsWith,omitempty"`
	NotStartsWith *string  `json:"notStartsWith,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	Null          bool     `json:"null,omitempty"`
}

func (f filterRequest) toNode() query.Node {
	if len(f.And) > 0 {
		children := make([]query.Node, len(f.And))
		for i, c := range f.And {
			children[i] = c.toNode()
		}
		return query.AndNode{Children: children}
	}
	if len(f.Or) > 0 {
		children := make([]query.Node, len(f.Or))
		for i, c := range f.Or {
			children[i] = c.toNode()
		}
		return query.OrNode{Children: children}
	}
	var scalars map[string]query.ScalarPredicate
	if len(f.Fields) > 0 {
		scalars = make(map[string]query.ScalarPredicate, len(f.Fields))
		for name, p := range f.Fields {
			scalars[name] = query.ScalarPredicate{
				Equals:        p.Equals,
				StartsWith:    p.StartsWith,
				NotStartsWith: p.NotStartsWith,
				Min:           p.Min,
				Max:           p.Max,
				IsNull:        p.Null,
			}
		}
	}

	return query.LeafNode{Filter: &query.Filter{
		Path:         f.Path,
		Filename:     f.Filename,
		Directory:    f.Directory,
		MimeType:     f.MimeType,
		CameraMake:   f.CameraMake,
		CameraModel:  f.CameraModel,
		Location:     f.Location,
		DateRange:    f.DateRange,
		Rating:       f.Rating,
		Tags:         f.Tags,
		TagsMatchAll: f.TagsMatchAll,
		Q:            f.Q,
		Scalars:      scalars,
	}}
}

// parseFilter decodes a URL-encoded JSON filter blob into a query.Node.
// An empty string means "no filter" (matches every Full record).
func parseFilter(raw string) (query.Node, error) {
	if raw == "" {
		return nil, nil
	}
	var fr filterRequest
	if err := json.Unmarshal([]byte(raw), &fr); err != nil {
		return nil, badRequest("invalid filter JSON: %v", err)
	}
	return fr.toNode(), nil
}
