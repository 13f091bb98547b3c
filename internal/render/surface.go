// Package render holds the reproducible drawing core: procedural grids,
// wind particles, and stateless draw functions that paint onto a Surface.
// The standard Surface implementation is a DisplayList, a recorded
// sequence of draw ops that serializes to JSON so any thin client can
// rasterize a frame.
package render

import "fmt"

// Color is an rgba color with a fractional alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

// RGBA is shorthand for constructing a Color.
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// String renders the CSS rgba() form used on the wire.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.R, c.G, c.B, c.A)
}

// Point is a position in surface pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Op is one recorded draw operation. Kind selects which fields apply:
// rect, circle, line, path, polygon, text, clear.
type Op struct {
	Kind   string    `json:"kind"`
	X      float64   `json:"x,omitempty"`
	Y      float64   `json:"y,omitempty"`
	W      float64   `json:"w,omitempty"`
	H      float64   `json:"h,omitempty"`
	R      float64   `json:"r,omitempty"`
	X2     float64   `json:"x2,omitempty"`
	Y2     float64   `json:"y2,omitempty"`
	Points []Point   `json:"points,omitempty"`
	Fill   string    `json:"fill,omitempty"`
	FillTo string    `json:"fillTo,omitempty"`
	Stroke string    `json:"stroke,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Dash   []float64 `json:"dash,omitempty"`
	Text   string    `json:"text,omitempty"`
	Size   float64   `json:"size,omitempty"`
}

// Surface is the 2D drawing target the draw functions paint onto.
type Surface interface {
	FillRect(x, y, w, h float64, fill Color)
	FillCircle(x, y, r float64, fill Color)
	StrokeLine(x1, y1, x2, y2 float64, stroke Color, width float64)
	StrokePath(points []Point, stroke Color, width float64, dash []float64)
	// FillPolygon fills with a vertical top-to-bottom gradient. Pass the
	// same color twice for a solid fill.
	FillPolygon(points []Point, top, bottom Color)
	Text(x, y float64, text string, fill Color, size float64)
	Clear(x, y, w, h float64)
	Size() (w, h float64)
}

// DisplayList records draw ops against a fixed-size surface.
type DisplayList struct {
	W   float64 `json:"width"`
	H   float64 `json:"height"`
	Ops []Op    `json:"ops"`
}

// NewDisplayList creates an empty recording surface.
func NewDisplayList(w, h float64) *DisplayList {
	return &DisplayList{W: w, H: h}
}

func (d *DisplayList) FillRect(x, y, w, h float64, fill Color) {
	d.Ops = append(d.Ops, Op{Kind: "rect", X: x, Y: y, W: w, H: h, Fill: fill.String()})
}

func (d *DisplayList) FillCircle(x, y, r float64, fill Color) {
	d.Ops = append(d.Ops, Op{Kind: "circle", X: x, Y: y, R: r, Fill: fill.String()})
}

func (d *DisplayList) StrokeLine(x1, y1, x2, y2 float64, stroke Color, width float64) {
	d.Ops = append(d.Ops, Op{Kind: "line", X: x1, Y: y1, X2: x2, Y2: y2, Stroke: stroke.String(), Width: width})
}

func (d *DisplayList) StrokePath(points []Point, stroke Color, width float64, dash []float64) {
	d.Ops = append(d.Ops, Op{Kind: "path", Points: points, Stroke: stroke.String(), Width: width, Dash: dash})
}

func (d *DisplayList) FillPolygon(points []Point, top, bottom Color) {
	d.Ops = append(d.Ops, Op{Kind: "polygon", Points: points, Fill: top.String(), FillTo: bottom.String()})
}

func (d *DisplayList) Text(x, y float64, text string, fill Color, size float64) {
	d.Ops = append(d.Ops, Op{Kind: "text", X: x, Y: y, Text: text, Fill: fill.String(), Size: size})
}

func (d *DisplayList) Clear(x, y, w, h float64) {
	d.Ops = append(d.Ops, Op{Kind: "clear", X: x, Y: y, W: w, H: h})
}

func (d *DisplayList) Size() (w, h float64) {
	return d.W, d.H
}
