package derivative

import "errors"

// ErrInvalidSource is returned when the source file cannot be decoded
// as the media type its extension implies (e.g. a corrupt or
// truncated image). Callers map this to an HTTP 422.
var ErrInvalidSource = errors.New("derivative: source file is not a valid media file")
