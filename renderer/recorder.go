package renderer

import "image/color"

// Circle is a recorded FillCircle call.
type Circle struct {
	X, Y, R float64
	Color   color.NRGBA
}

// Line is a recorded StrokeLine call.
type Line struct {
	X0, Y0, X1, Y1 float64
	Width          float64
	Color          color.NRGBA
}

// Recorder is an in-memory Surface. It keeps the draw calls issued since the
// last Clear, plus running totals, and backs headless runs and tests.
type Recorder struct {
	W, H float64

	Circles []Circle
	Lines   []Line

	Clears       int
	TotalCircles int
	TotalLines   int
}

// NewRecorder creates a recorder with the given dimensions.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{W: w, H: h}
}

// Size implements Surface.
func (r *Recorder) Size() (float64, float64) { return r.W, r.H }

// Resize implements Surface.
func (r *Recorder) Resize(w, h float64) {
	r.W, r.H = w, h
}

// Clear implements Surface. Recorded calls from the previous frame are dropped.
func (r *Recorder) Clear() {
	r.Clears++
	r.Circles = r.Circles[:0]
	r.Lines = r.Lines[:0]
}

// FillCircle implements Surface.
func (r *Recorder) FillCircle(x, y, radius float64, c color.NRGBA) {
	r.TotalCircles++
	r.Circles = append(r.Circles, Circle{X: x, Y: y, R: radius, Color: c})
}

// StrokeLine implements Surface.
func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	r.TotalLines++
	r.Lines = append(r.Lines, Line{X0: x0, Y0: y0, X1: x1, Y1: y1, Width: width, Color: c})
}

// Calls returns the total number of draw calls, clears included.
func (r *Recorder) Calls() int {
	return r.Clears + r.TotalCircles + r.TotalLines
}
