package scene

import "encoding/json"

// DrawCommand represents a single drawing operation for the frontend to
// execute on a Canvas2D context. Commands are emitted in painter's order.
type DrawCommand struct {
	Op          string        `json:"op"` // "path", "text", "image"
	ObjectID    string        `json:"objectId,omitempty"`
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	ScaleX      float64       `json:"sx,omitempty"`
	ScaleY      float64       `json:"sy,omitempty"`
	Rotation    float64       `json:"r,omitempty"`
	Path        []PathCommand `json:"path,omitempty"`
	Text        string        `json:"text,omitempty"`
	Muted       bool          `json:"muted,omitempty"` // placeholder styling
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
	Width       float64       `json:"width,omitempty"`
	Height      float64       `json:"height,omitempty"`
	AssetID     string        `json:"assetId,omitempty"`
}

// CompileDrawCommands generates a draw command buffer for the collection.
func CompileDrawCommands(c *Collection) []DrawCommand {
	var commands []DrawCommand
	for _, obj := range c.Objects() {
		if cmd, ok := compileObject(obj); ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

func compileObject(obj *Object) (DrawCommand, bool) {
	cmd := DrawCommand{
		ObjectID:    obj.ID,
		X:           obj.X,
		Y:           obj.Y,
		ScaleX:      obj.ScaleX,
		ScaleY:      obj.ScaleY,
		Rotation:    obj.Rotation,
		Fill:        obj.Style.Fill,
		Stroke:      obj.Style.Stroke,
		StrokeWidth: obj.Style.StrokeWidth,
		Opacity:     obj.Style.Opacity,
	}

	switch obj.Kind {
	case KindRect:
		cmd.Op = "path"
		cmd.Path = RectPath(obj.Width, obj.Height)
	case KindEllipse:
		cmd.Op = "path"
		cmd.Path = EllipsePath(obj.Width, obj.Height)
	case KindTriangle:
		cmd.Op = "path"
		cmd.Path = TrianglePath(obj.Width, obj.Height)
	case KindBubblePath:
		cmd.Op = "path"
		cmd.Path = BubblePath(obj.Width, obj.Height, obj.TailSize)
	case KindLine:
		if len(obj.Points) < 2 {
			return DrawCommand{}, false
		}
		cmd.Op = "path"
		cmd.Path = LinePath(obj.Points)
	case KindArrow:
		if len(obj.Points) < 2 {
			return DrawCommand{}, false
		}
		cmd.Op = "path"
		cmd.Path = ArrowPath(obj.Points[0], obj.Points[1])
	case KindFreeform:
		if len(obj.Points) == 0 {
			return DrawCommand{}, false
		}
		cmd.Op = "path"
		cmd.Path = LinePath(obj.Points)
	case KindTextbox:
		cmd.Op = "text"
		cmd.Text = obj.Text
		cmd.Muted = obj.Placeholder
		cmd.Width = obj.Width
		cmd.Height = obj.Height
	case KindImage:
		cmd.Op = "image"
		cmd.AssetID = obj.AssetID
		cmd.Width = obj.Width
		cmd.Height = obj.Height
	default:
		return DrawCommand{}, false
	}

	return cmd, true
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
