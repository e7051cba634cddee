// Package units converts physical label-sheet measurements into PDF points
// and formats label numbers.
//
// PDF user space is measured in points, 72 to the inch. Sheet geometry is
// configured in centimeters, so every measurement goes through [CmToPt]
// once. The renderer receives whole points only: [FloorPt] truncates
// toward zero after conversion, losing up to one point per measurement.
// Existing label stock is cut for that grid.
package units

import (
	"math"
	"strconv"
	"strings"
)

// PointsPerInch is the PDF user space resolution.
const PointsPerInch = 72.0

// CmPerInch is the number of centimeters in one inch.
const CmPerInch = 2.54

// floorEpsilon absorbs binary representation error, so that a value which is
// mathematically integral (2.54 cm is exactly 72 pt) never floors to one less.
const floorEpsilon = 1e-9

// CmToPt converts centimeters to points.
func CmToPt(cm float64) float64 {
	return cm / CmPerInch * PointsPerInch
}

// FloorPt converts centimeters to points and floors the result to an
// integral point value.
func FloorPt(cm float64) int {
	return int(math.Floor(CmToPt(cm) + floorEpsilon))
}

// ZeroPad formats n in decimal, left padded with '0' to at least width
// characters. Numbers wider than width are returned in full.
func ZeroPad(n, width int) string {
	s := strconv.Itoa(n)
	neg := n < 0
	if neg {
		s = s[1:]
		width--
	}
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	if neg {
		s = "-" + s
	}
	return s
}
