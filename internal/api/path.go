package api

import (
	"net/url"

	"github.com/scottdrichards/photrix/internal/pathutil"
)

// safePath URL-decodes and normalizes an inbound path parameter,
// rejecting traversal attempts outright rather than letting
// pathutil.Join catch them after the fact.
func safePath(raw string) (string, error) {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", badRequest("invalid path encoding")
	}
	normalized, err := pathutil.Normalize(decoded)
	if err != nil {
		return "", forbidden("path escapes media root")
	}
	return normalized, nil
}
