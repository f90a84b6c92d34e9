// Package chart lays out the category pie chart and the monthly bar chart as
// lists of absolute-positioned drawing commands. It never touches a real
// surface; WriteSVG is the only adapter that turns commands into markup.
package chart

import "encoding/json"

// Text alignment relative to the anchor point.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Shape is one drawing command.
type Shape interface {
	Kind() string
}

// Text fills a string at (X, Y) on its baseline, rotated by Rotate degrees
// around the anchor.
type Text struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Value  string  `json:"value"`
	Font   string  `json:"font"`
	Align  string  `json:"align"`
	Rotate float64 `json:"rotate,omitempty"`
	Fill   string  `json:"fill"`
}

// Rect fills an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Fill   string  `json:"fill"`
}

// Slice is a filled pie wedge. Angles are in degrees, 0° pointing right and
// positive sweeps turning clockwise on screen.
type Slice struct {
	CX        float64 `json:"cx"`
	CY        float64 `json:"cy"`
	Radius    float64 `json:"radius"`
	StartDeg  float64 `json:"start_deg"`
	SweepDeg  float64 `json:"sweep_deg"`
	Fill      string  `json:"fill"`
	Stroke    string  `json:"stroke"`
	LineWidth float64 `json:"line_width"`
}

// Line strokes an open polyline.
type Line struct {
	Points    []Point `json:"points"`
	Stroke    string  `json:"stroke"`
	LineWidth float64 `json:"line_width"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (Text) Kind() string  { return "text" }
func (Rect) Kind() string  { return "rect" }
func (Slice) Kind() string { return "slice" }
func (Line) Kind() string  { return "line" }

// Drawing is the full instruction list for one fixed-size surface.
type Drawing struct {
	Width, Height float64
	Shapes        []Shape
}

func (d *Drawing) add(s Shape) {
	d.Shapes = append(d.Shapes, s)
}

// Slices returns the pie wedges in drawing order.
func (d Drawing) Slices() []Slice {
	var out []Slice
	for _, s := range d.Shapes {
		if v, ok := s.(Slice); ok {
			out = append(out, v)
		}
	}
	return out
}

// Texts returns the text commands in drawing order.
func (d Drawing) Texts() []Text {
	var out []Text
	for _, s := range d.Shapes {
		if v, ok := s.(Text); ok {
			out = append(out, v)
		}
	}
	return out
}

// Rects returns the filled rectangles in drawing order.
func (d Drawing) Rects() []Rect {
	var out []Rect
	for _, s := range d.Shapes {
		if v, ok := s.(Rect); ok {
			out = append(out, v)
		}
	}
	return out
}

// Lines returns the stroked polylines in drawing order.
func (d Drawing) Lines() []Line {
	var out []Line
	for _, s := range d.Shapes {
		if v, ok := s.(Line); ok {
			out = append(out, v)
		}
	}
	return out
}

type shapeJSON struct {
	Kind  string `json:"kind"`
	Shape any    `json:"shape"`
}

// MarshalJSON tags every shape with its kind so clients can replay the list
// onto a canvas.
func (d Drawing) MarshalJSON() ([]byte, error) {
	shapes := make([]shapeJSON, len(d.Shapes))
	for i, s := range d.Shapes {
		shapes[i] = shapeJSON{Kind: s.Kind(), Shape: s}
	}
	return json.Marshal(struct {
		Width  float64     `json:"width"`
		Height float64     `json:"height"`
		Shapes []shapeJSON `json:"shapes"`
	}{d.Width, d.Height, shapes})
}
