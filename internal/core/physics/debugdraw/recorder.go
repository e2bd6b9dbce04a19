// Package debugdraw collects debug geometry emitted during a step so it can be
// shipped to a viewer after the step completes.
package debugdraw

import "github.com/go-gl/mathgl/mgl32"

type Line struct {
	From      mgl32.Vec3 `json:"from"`
	To        mgl32.Vec3 `json:"to"`
	Thickness float32    `json:"thickness"`
	Colour    mgl32.Vec4 `json:"colour"`
}

type Point struct {
	Pos    mgl32.Vec3 `json:"pos"`
	Size   float32    `json:"size"`
	Colour mgl32.Vec4 `json:"colour"`
}

// Recorder buffers lines and points until Reset. It is not safe for concurrent use.
type Recorder struct {
	lines  []Line
	points []Point
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) DrawThickLine(from, to mgl32.Vec3, thickness float32, colour mgl32.Vec4) {
	r.lines = append(r.lines, Line{From: from, To: to, Thickness: thickness, Colour: colour})
}

func (r *Recorder) DrawPoint(pos mgl32.Vec3, size float32, colour mgl32.Vec4) {
	r.points = append(r.points, Point{Pos: pos, Size: size, Colour: colour})
}

// Lines returns the recorded lines. The slice is reused after Reset.
func (r *Recorder) Lines() []Line { return r.lines }

// Points returns the recorded points. The slice is reused after Reset.
func (r *Recorder) Points() []Point { return r.points }

func (r *Recorder) Len() int { return len(r.lines) + len(r.points) }

// Reset drops the recorded geometry, keeping the buffers.
func (r *Recorder) Reset() {
	r.lines = r.lines[:0]
	r.points = r.points[:0]
}
