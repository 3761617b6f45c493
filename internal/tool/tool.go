// Package tool implements the editor's tool state machine: it consumes
// pointer events plus the active-tool selector and drives live, drag-based
// construction of scene primitives.
package tool

import (
	"fmt"

	"github.com/wower3/image-edit/internal/scene"
)

// Name identifies an editor tool.
type Name string

const (
	Select   Name = "select"
	Pan      Name = "pan"
	Pencil   Name = "freeDraw(pencil)"
	Eraser   Name = "freeDraw(eraser)"
	Rect     Name = "rect"
	Ellipse  Name = "ellipse"
	Triangle Name = "triangle"
	Line     Name = "line"
	Arrow    Name = "arrow"
	Text     Name = "text"
	Bubble   Name = "bubble"

	// Trigger pseudo-tools start an external flow (file picker, crop UI)
	// without changing the drawing state.
	ImageImport Name = "image-import-trigger"
	Crop        Name = "crop-trigger"
)

var validNames = map[Name]bool{
	Select: true, Pan: true, Pencil: true, Eraser: true,
	Rect: true, Ellipse: true, Triangle: true, Line: true, Arrow: true,
	Text: true, Bubble: true, ImageImport: true, Crop: true,
}

// Parse validates a tool name. Unknown names are rejected with an error and
// must cause no state change in the caller.
func Parse(s string) (Name, error) {
	n := Name(s)
	if !validNames[n] {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return n, nil
}

// IsTrigger reports whether the name is a trigger pseudo-tool.
func (n Name) IsTrigger() bool {
	return n == ImageImport || n == Crop
}

// IsFreeDraw reports whether the name is a free-drawing mode.
func (n Name) IsFreeDraw() bool {
	return n == Pencil || n == Eraser
}

// IsShapeTool reports whether pointer-down with this tool begins a
// drag-constructed primitive.
func (n Name) IsShapeTool() bool {
	switch n {
	case Rect, Ellipse, Triangle, Line, Arrow, Text, Bubble:
		return true
	}
	return false
}

// ShapeKind maps a shape tool to the primitive kind it constructs.
func (n Name) ShapeKind() scene.Kind {
	switch n {
	case Rect:
		return scene.KindRect
	case Ellipse:
		return scene.KindEllipse
	case Triangle:
		return scene.KindTriangle
	case Line:
		return scene.KindLine
	case Arrow:
		return scene.KindArrow
	case Text:
		return scene.KindTextbox
	case Bubble:
		return scene.KindBubblePath
	}
	return ""
}
