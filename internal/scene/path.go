package scene

import "math"

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], etc.
type PathCommand []interface{}

// ArrowheadLength is the fixed length of an arrow's head triangle. The head
// is derived from the line angle and recreated on every geometry change,
// never incrementally transformed.
const ArrowheadLength = 14.0

// RectPath generates path commands for a w×h rectangle at the origin.
func RectPath(w, h float64) []PathCommand {
	return []PathCommand{
		{"M", 0.0, 0.0},
		{"L", w, 0.0},
		{"L", w, h},
		{"L", 0.0, h},
		{"Z"},
	}
}

// EllipsePath generates path commands for an ellipse inscribed in a w×h box.
func EllipsePath(w, h float64) []PathCommand {
	rx, ry := w/2, h/2
	cx, cy := rx, ry

	// Magic number for bezier approximation of a circle/ellipse
	// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

// TrianglePath generates path commands for an isoceles triangle inscribed
// in a w×h box, apex at the top center.
func TrianglePath(w, h float64) []PathCommand {
	return []PathCommand{
		{"M", w / 2, 0.0},
		{"L", w, h},
		{"L", 0.0, h},
		{"Z"},
	}
}

// BubblePath generates the closed outline of a speech bubble: a rounded
// rectangle body with a triangular tail anchored at the horizontal center.
// The tail occupies the bottom tailH units of the h×w box; tail width is
// 1.5× its height.
func BubblePath(w, h, tailH float64) []PathCommand {
	if tailH > h/2 {
		tailH = h / 2
	}
	bodyH := h - tailH
	r := min(12.0, min(w/4, bodyH/4)) // corner radius
	tailW := tailH * 1.5
	cx := w / 2

	k := r * 0.5522847498
	return []PathCommand{
		{"M", r, 0.0},
		{"L", w - r, 0.0},
		{"C", w - r + k, 0.0, w, r - k, w, r},
		{"L", w, bodyH - r},
		{"C", w, bodyH - r + k, w - r + k, bodyH, w - r, bodyH},
		{"L", cx + tailW/2, bodyH},
		{"L", cx, h},
		{"L", cx - tailW/2, bodyH},
		{"L", r, bodyH},
		{"C", r - k, bodyH, 0.0, bodyH - r + k, 0.0, bodyH - r},
		{"L", 0.0, r},
		{"C", 0.0, r - k, r - k, 0.0, r, 0.0},
		{"Z"},
	}
}

// LinePath generates path commands connecting the given points.
func LinePath(points []Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	cmds := make([]PathCommand, 0, len(points))
	cmds = append(cmds, PathCommand{"M", points[0].X, points[0].Y})
	for _, p := range points[1:] {
		cmds = append(cmds, PathCommand{"L", p.X, p.Y})
	}
	return cmds
}

// ArrowPath generates path commands for a line from the first to the second
// point plus a closed arrowhead triangle rotated to the line's angle.
func ArrowPath(from, to Point) []PathCommand {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	spread := math.Pi / 7

	leftX := to.X - ArrowheadLength*math.Cos(angle-spread)
	leftY := to.Y - ArrowheadLength*math.Sin(angle-spread)
	rightX := to.X - ArrowheadLength*math.Cos(angle+spread)
	rightY := to.Y - ArrowheadLength*math.Sin(angle+spread)

	return []PathCommand{
		{"M", from.X, from.Y},
		{"L", to.X, to.Y},
		{"M", leftX, leftY},
		{"L", to.X, to.Y},
		{"L", rightX, rightY},
		{"Z"},
	}
}
