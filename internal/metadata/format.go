package metadata

import (
	"fmt"
	"math"
)

// FormatExposureTime renders an exposure time in seconds as a display
// string:
//
//	t == 0  -> "0s"
//	t >= 1  -> "<t>s"
//	else    -> "1/<round(1/t)>s"
func FormatExposureTime(t float64) string {
	switch {
	case t == 0:
		return "0s"
	case t >= 1:
		return fmt.Sprintf("%gs", t)
	default:
		return fmt.Sprintf("1/%ds", int(math.Round(1/t)))
	}
}

// FormatAperture renders an f-number as "f/<round(t*10)/10>".
func FormatAperture(t float64) string {
	return fmt.Sprintf("f/%g", math.Round(t*10)/10)
}

// FormatFocalLength renders a focal length in millimeters as
// "<round(t*10)/10>mm".
func FormatFocalLength(t float64) string {
	return fmt.Sprintf("%gmm", math.Round(t*10)/10)
}
