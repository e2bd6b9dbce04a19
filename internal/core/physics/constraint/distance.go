package constraint

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

var _ Constraint = (*Distance)(nil)

// Distance keeps two anchor points at the separation they had when the
// constraint was created, like a rigid rod.
type Distance struct {
	anchors
}

// NewDistance joins the world-space points onA and onB, attached to bodies a
// and b respectively.
func NewDistance(bodies BodySet, a, b body.Handle, onA, onB mgl32.Vec3) (*Distance, error) {
	an, err := newAnchors(bodies, a, b, onA, onB)
	if err != nil {
		return nil, err
	}
	return &Distance{anchors: an}, nil
}

// NewDistanceCentres joins the two centres of mass.
func NewDistanceCentres(bodies BodySet, a, b body.Handle) (*Distance, error) {
	onA, onB, err := centres(bodies, a, b)
	if err != nil {
		return nil, err
	}
	return NewDistance(bodies, a, b, onA, onB)
}

func (c *Distance) Kind() Kind { return KindDistance }

func (c *Distance) ApplyImpulse(bodies BodySet, dt float32) {
	s, ok := c.prepare(bodies, dt)
	if !ok {
		return
	}
	jn := -(s.relative.Dot(s.axis) + s.bias) / s.mass
	s.apply(jn)
}

func (c *Distance) DebugDraw(bodies BodySet, d DebugDrawer) {
	c.debugDraw(bodies, d, mgl32.Vec4{1, 0.8, 1, 1})
}

func centres(bodies BodySet, a, b body.Handle) (mgl32.Vec3, mgl32.Vec3, error) {
	objA, ok := bodies.Get(a)
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, bodyError(a)
	}
	objB, ok := bodies.Get(b)
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, bodyError(b)
	}
	return objA.Position(), objB.Position(), nil
}
