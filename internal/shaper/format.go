package shaper

import (
	"fmt"
	"math"
	"strconv"
)

// formatCoordinate renders a signed decimal as <abs>.<3 decimals>°<N|S|E|W>,
// per the §8 coordinate-formatting testable property.
func formatCoordinate(value float64, positiveSuffix, negativeSuffix string) string {
	suffix := positiveSuffix
	if value < 0 {
		suffix = negativeSuffix
	}
	return fmt.Sprintf("%.3f°%s", math.Abs(value), suffix)
}

func formatLat(lat float64) string { return formatCoordinate(lat, "N", "S") }
func formatLon(lon float64) string { return formatCoordinate(lon, "E", "W") }

func formatTemperature(v float64) string { return fmt.Sprintf("%.2f°C", v) }
func formatSalinity(v float64) string    { return fmt.Sprintf("%.2f PSU", v) }
func formatDepth(v float64) string       { return fmt.Sprintf("%.2fm", v) }

// formatCount renders an integer with a thousands separator. Stdlib only:
// a one-off grouping of plain integers does not warrant pulling in a
// locale/formatting library for a single call site.
func formatCount(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.Itoa(n)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
