package media

import (
	"fmt"
	"strconv"
	"strings"
)

// FocusPoint marks the visually important region of an image. Both
// coordinates are normalized to [0,1].
type FocusPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ParseFocusPoint parses a "x,y" string. Absent, malformed, or
// out-of-range input yields the zero point rather than an error; the focus
// point is advisory and must never fail an upload.
func ParseFocusPoint(raw string) FocusPoint {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return FocusPoint{}
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return FocusPoint{}
	}
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return FocusPoint{}
	}
	return FocusPoint{X: x, Y: y}
}

// String renders the point back into the "x,y" wire form.
func (f FocusPoint) String() string {
	return fmt.Sprintf("%g,%g", f.X, f.Y)
}
