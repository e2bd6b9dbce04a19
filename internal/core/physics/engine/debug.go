package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/broadphase"
	"github.com/zeusync/impulse/internal/core/physics/constraint"
)

var (
	aabbAwakeColour  = mgl32.Vec4{1, 1, 1, 1}
	aabbRestColour   = mgl32.Vec4{0.4, 0.4, 0.4, 1}
	velocityColour   = mgl32.Vec4{0, 0, 1, 1}
	pairColour       = mgl32.Vec4{1, 0, 0, 1}
	octreeLeafColour = mgl32.Vec4{0, 1, 0, 1}
)

// DebugDraw emits the geometry selected by the debug flags. It reads state
// only and may run between steps.
func (e *Engine) DebugDraw(d constraint.DebugDrawer) {
	flags := e.settings.DebugFlags

	if flags&DebugConstraints != 0 {
		for _, c := range e.constraints {
			c.DebugDraw(e.bodies, d)
		}
	}

	if flags&(DebugAABB|DebugLinearVelocity) != 0 {
		e.bodies.Each(func(_ body.Handle, b *body.RigidBody) bool {
			if flags&DebugAABB != 0 && b.Shape() != nil {
				colour := aabbAwakeColour
				if b.IsAtRest() {
					colour = aabbRestColour
				}
				drawBox(d, b.WorldSpaceAABB(), colour)
			}
			if flags&DebugLinearVelocity != 0 && !b.IsStatic() {
				p := b.Position()
				d.DrawThickLine(p, p.Add(b.LinearVelocity()), 0.02, velocityColour)
			}
			return true
		})
	}

	if flags&DebugBroadphase != 0 {
		for _, p := range e.pairs {
			// a body may have been removed since the pair was found
			if p.A.Handle().IsNil() || p.B.Handle().IsNil() {
				continue
			}
			d.DrawThickLine(p.A.Position(), p.B.Position(), 0.01, pairColour)
		}
		if o, ok := e.broadphase.(*broadphase.Octree); ok {
			for _, leaf := range o.Leaves() {
				drawBox(d, leaf, octreeLeafColour)
			}
		}
	}
}

// drawBox outlines box with its twelve edges.
func drawBox(d constraint.DebugDrawer, box body.BoundingBox, colour mgl32.Vec4) {
	corner := func(i int) mgl32.Vec3 {
		c := box.Min
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[axis] = box.Max[axis]
			}
		}
		return c
	}
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) == 0 {
				d.DrawThickLine(corner(i), corner(i|1<<axis), 0.01, colour)
			}
		}
	}
}
