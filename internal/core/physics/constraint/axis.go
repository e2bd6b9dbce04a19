package constraint

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

var _ Constraint = (*Axis)(nil)

// Axes is a set of locked world axes.
type Axes uint8

const (
	AxisX Axes = 1 << iota
	AxisY
	AxisZ

	AxesXY  = AxisX | AxisY
	AxesXZ  = AxisX | AxisZ
	AxesYZ  = AxisY | AxisZ
	AxesXYZ = AxisX | AxisY | AxisZ
)

// ParseAxes reads combinations such as "x", "XZ" or "xyz".
func ParseAxes(s string) (Axes, error) {
	var a Axes
	for _, r := range strings.ToLower(s) {
		var bit Axes
		switch r {
		case 'x':
			bit = AxisX
		case 'y':
			bit = AxisY
		case 'z':
			bit = AxisZ
		default:
			return 0, fmt.Errorf("%q: %w", s, ErrUnknownAxes)
		}
		if a&bit != 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrUnknownAxes)
		}
		a |= bit
	}
	if a == 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownAxes)
	}
	return a, nil
}

func (a Axes) Has(axis Axes) bool { return a&axis != 0 }

func (a Axes) String() string {
	var sb strings.Builder
	for i, name := range [...]string{"X", "Y", "Z"} {
		if a&(1<<i) != 0 {
			sb.WriteString(name)
		}
	}
	return sb.String()
}

// Axis pins a single body's linear velocity to zero along the locked axes.
type Axis struct {
	body body.Handle
	axes Axes
}

func NewAxis(bodies BodySet, h body.Handle, axes Axes) (*Axis, error) {
	if axes == 0 || axes&^AxesXYZ != 0 {
		return nil, fmt.Errorf("%d: %w", axes, ErrUnknownAxes)
	}
	if _, ok := bodies.Get(h); !ok {
		return nil, bodyError(h)
	}
	return &Axis{body: h, axes: axes}, nil
}

func (c *Axis) Kind() Kind { return KindAxis }

func (c *Axis) Axes() Axes { return c.axes }

func (c *Axis) Bodies() []body.Handle { return []body.Handle{c.body} }

func (c *Axis) ApplyImpulse(bodies BodySet, _ float32) {
	b, ok := bodies.Get(c.body)
	if !ok || b.InverseMass() == 0 {
		return
	}
	v := b.LinearVelocity()
	for i := 0; i < 3; i++ {
		if c.axes&(1<<i) != 0 {
			v[i] = 0
		}
	}
	b.SetLinearVelocity(v)
}

func (c *Axis) DebugDraw(bodies BodySet, d DebugDrawer) {
	b, ok := bodies.Get(c.body)
	if !ok {
		return
	}
	p := b.Position()
	for i := 0; i < 3; i++ {
		if c.axes&(1<<i) == 0 {
			continue
		}
		var dir mgl32.Vec3
		dir[i] = 0.5
		colour := mgl32.Vec4{0, 0, 0, 1}
		colour[i] = 1
		d.DrawThickLine(p.Sub(dir), p.Add(dir), 0.02, colour)
	}
	d.DrawPoint(p, 0.05, mgl32.Vec4{1, 1, 1, 1})
}
