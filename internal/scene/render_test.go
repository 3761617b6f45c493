package scene

import (
	"math"
	"testing"
)

func TestCompileDrawCommands(t *testing.T) {
	c := NewCollection()

	rect := rectObj("rect", 10, 20, 100, 80)
	rect.Style = Style{Fill: "#fff", Stroke: "#000", StrokeWidth: 2, Opacity: 1}
	c.Add(rect)

	text := &Object{
		ID: "text", Kind: KindTextbox,
		X: 0, Y: 0, Width: 200, Height: 48,
		ScaleX: 1, ScaleY: 1,
		Text: "Add text", Placeholder: true,
	}
	c.Add(text)

	// Degenerate geometry produces no command.
	c.Add(&Object{ID: "halfline", Kind: KindLine, ScaleX: 1, ScaleY: 1, Points: []Point{{X: 1, Y: 1}}})

	cmds := CompileDrawCommands(c)
	if len(cmds) != 2 {
		t.Fatalf("%d commands, want 2", len(cmds))
	}

	if cmds[0].Op != "path" || cmds[0].ObjectID != "rect" {
		t.Errorf("first command = %s/%s, want path/rect", cmds[0].Op, cmds[0].ObjectID)
	}
	if len(cmds[0].Path) != 5 {
		t.Errorf("rect path has %d segments, want 5", len(cmds[0].Path))
	}

	if cmds[1].Op != "text" || !cmds[1].Muted {
		t.Errorf("second command = %s muted=%v, want muted text", cmds[1].Op, cmds[1].Muted)
	}
}

func TestBubblePathTail(t *testing.T) {
	cmds := BubblePath(160, 120, 24)

	// The tail apex is the single point at the full height, on the
	// horizontal center.
	found := false
	for _, cmd := range cmds {
		if len(cmd) == 3 && cmd[0] == "L" && cmd[1] == 80.0 && cmd[2] == 120.0 {
			found = true
		}
	}
	if !found {
		t.Error("tail apex (80, 120) missing from bubble outline")
	}

	// No segment of the body outline dips below the body height except the
	// tail triangle around the center.
	bodyH := 120.0 - 24.0
	for _, cmd := range cmds {
		if len(cmd) != 3 {
			continue
		}
		x, y := cmd[1].(float64), cmd[2].(float64)
		if y > bodyH && math.Abs(x-80) > 24*1.5/2 {
			t.Errorf("outline point (%g, %g) below body outside the tail", x, y)
		}
	}
}

func TestArrowPathHeadTracksAngle(t *testing.T) {
	from := Point{X: 0, Y: 0}
	to := Point{X: 100, Y: 0}
	cmds := ArrowPath(from, to)

	if len(cmds) != 6 {
		t.Fatalf("%d commands, want 6", len(cmds))
	}

	// For a horizontal arrow the head barbs sit behind the tip, mirrored
	// about the line.
	leftY := cmds[2][2].(float64)
	rightY := cmds[4][2].(float64)
	if math.Abs(leftY+rightY) > 1e-9 {
		t.Errorf("barbs not mirrored: %g vs %g", leftY, rightY)
	}
	leftX := cmds[2][1].(float64)
	if leftX >= to.X {
		t.Errorf("barb at x=%g, want behind the tip x=%g", leftX, to.X)
	}
	dist := to.DistanceTo(Point{X: leftX, Y: leftY})
	if math.Abs(dist-ArrowheadLength) > 1e-9 {
		t.Errorf("barb distance = %g, want %g", dist, ArrowheadLength)
	}
}
