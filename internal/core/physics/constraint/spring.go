package constraint

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

var _ Constraint = (*Spring)(nil)

const (
	DefaultSpringConstant float32 = 0.9
	DefaultDampingFactor  float32 = 0.5
)

// Spring is a soft Distance: the positional correction is scaled by the spring
// constant and opposed by a damping term proportional to the relative speed.
//
// The spring constant is a gain on the velocity error, so the response only
// settles for constants below 2.
type Spring struct {
	anchors
	springConstant float32
	dampingFactor  float32
}

func NewSpring(bodies BodySet, a, b body.Handle, onA, onB mgl32.Vec3, springConstant, dampingFactor float32) (*Spring, error) {
	if springConstant < 0 {
		return nil, ErrNegativeSpring
	}
	if dampingFactor < 0 {
		return nil, ErrNegativeDamping
	}
	an, err := newAnchors(bodies, a, b, onA, onB)
	if err != nil {
		return nil, err
	}
	return &Spring{
		anchors:        an,
		springConstant: springConstant,
		dampingFactor:  dampingFactor,
	}, nil
}

// NewSpringCentres joins the two centres of mass.
func NewSpringCentres(bodies BodySet, a, b body.Handle, springConstant, dampingFactor float32) (*Spring, error) {
	onA, onB, err := centres(bodies, a, b)
	if err != nil {
		return nil, err
	}
	return NewSpring(bodies, a, b, onA, onB, springConstant, dampingFactor)
}

func (c *Spring) Kind() Kind { return KindSpring }

func (c *Spring) SpringConstant() float32 { return c.springConstant }

func (c *Spring) DampingFactor() float32 { return c.dampingFactor }

func (c *Spring) ApplyImpulse(bodies BodySet, dt float32) {
	s, ok := c.prepare(bodies, dt)
	if !ok {
		return
	}
	jn := -(s.relative.Dot(s.axis)+s.bias)*c.springConstant - c.dampingFactor*s.relative.Len()
	s.apply(jn / s.mass)
}

func (c *Spring) DebugDraw(bodies BodySet, d DebugDrawer) {
	c.debugDraw(bodies, d, mgl32.Vec4{0.8, 1, 0.8, 1})
}
