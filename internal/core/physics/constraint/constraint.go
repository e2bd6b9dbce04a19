// Package constraint implements sequential-impulse joints between rigid bodies.
//
// Constraints refer to bodies by handle and resolve them through a BodySet on
// every call, so a constraint whose body was removed simply stops acting. They
// hold no per-frame state: ApplyImpulse is a function of the current body
// kinematics and is meant to be called once per solver iteration, in the same
// order every step.
package constraint

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

const (
	// baumgarteScalar is the fraction of the positional error fed back into
	// the velocity solve each iteration.
	baumgarteScalar float32 = 0.1

	// minSeparation is the anchor distance below which no axis can be
	// derived and the impulse is skipped.
	minSeparation float32 = 1e-6
)

// BodySet resolves handles to live bodies. *body.Set satisfies it.
type BodySet interface {
	Get(h body.Handle) (*body.RigidBody, bool)
}

// DebugDrawer receives debug geometry. Implementations must not retain the
// arguments beyond the call.
type DebugDrawer interface {
	DrawThickLine(from, to mgl32.Vec3, thickness float32, colour mgl32.Vec4)
	DrawPoint(pos mgl32.Vec3, size float32, colour mgl32.Vec4)
}

// Constraint is a joint solved by the engine once per solver iteration.
type Constraint interface {
	// Kind names the constraint type for logs and config files.
	Kind() Kind
	// Bodies lists the handles the constraint acts on.
	Bodies() []body.Handle
	// ApplyImpulse changes body velocities to move toward satisfying the
	// constraint. dt is the fixed step length in seconds.
	ApplyImpulse(bodies BodySet, dt float32)
	// DebugDraw emits geometry for the constraint without changing any state.
	DebugDraw(bodies BodySet, d DebugDrawer)
}

type Kind string

const (
	KindDistance Kind = "distance"
	KindSpring   Kind = "spring"
	KindAxis     Kind = "axis"
)

// anchors is the construction-time data shared by the two-body constraints.
type anchors struct {
	bodyA, bodyB   body.Handle
	localA, localB mgl32.Vec3
	restDistance   float32
}

func newAnchors(bodies BodySet, a, b body.Handle, worldA, worldB mgl32.Vec3) (anchors, error) {
	objA, ok := bodies.Get(a)
	if !ok {
		return anchors{}, bodyError(a)
	}
	objB, ok := bodies.Get(b)
	if !ok {
		return anchors{}, bodyError(b)
	}
	if a == b {
		return anchors{}, ErrSameBody
	}
	return anchors{
		bodyA:        a,
		bodyB:        b,
		localA:       toLocal(objA, worldA),
		localB:       toLocal(objB, worldB),
		restDistance: worldB.Sub(worldA).Len(),
	}, nil
}

// toLocal rotates a world anchor into the body frame so that it follows the
// body as it turns.
func toLocal(b *body.RigidBody, world mgl32.Vec3) mgl32.Vec3 {
	return b.Orientation().Inverse().Rotate(world.Sub(b.Position()))
}

func (c *anchors) Bodies() []body.Handle {
	return []body.Handle{c.bodyA, c.bodyB}
}

func (c *anchors) RestDistance() float32 { return c.restDistance }

func (c *anchors) resolve(bodies BodySet) (*body.RigidBody, *body.RigidBody, bool) {
	a, ok := bodies.Get(c.bodyA)
	if !ok {
		return nil, nil, false
	}
	b, ok := bodies.Get(c.bodyB)
	if !ok {
		return nil, nil, false
	}
	return a, b, true
}

// worldAnchors returns the anchor offsets from each centre of mass and the
// anchor positions, using the current orientations.
func (c *anchors) worldAnchors(a, b *body.RigidBody) (rA, rB, onA, onB mgl32.Vec3) {
	rA = a.Orientation().Rotate(c.localA)
	rB = b.Orientation().Rotate(c.localB)
	return rA, rB, a.Position().Add(rA), b.Position().Add(rB)
}

func (c *anchors) debugDraw(bodies BodySet, d DebugDrawer, pointColour mgl32.Vec4) {
	a, b, ok := c.resolve(bodies)
	if !ok {
		return
	}
	_, _, onA, onB := c.worldAnchors(a, b)
	d.DrawThickLine(onA, onB, 0.02, mgl32.Vec4{0, 0, 0, 1})
	d.DrawPoint(onA, 0.05, pointColour)
	d.DrawPoint(onB, 0.05, pointColour)
}

// impulseSolve holds the quantities both two-body constraints derive before
// computing their impulse magnitude.
type impulseSolve struct {
	a, b     *body.RigidBody
	rA, rB   mgl32.Vec3
	axis     mgl32.Vec3
	relative mgl32.Vec3
	mass     float32
	bias     float32
}

// prepare runs the shared steps of the solve. It reports false when the
// constraint cannot act this iteration: a body is gone, both bodies have
// infinite mass, or the anchors coincide.
func (c *anchors) prepare(bodies BodySet, dt float32) (impulseSolve, bool) {
	a, b, ok := c.resolve(bodies)
	if !ok {
		return impulseSolve{}, false
	}
	invMassA, invMassB := a.InverseMass(), b.InverseMass()
	if invMassA+invMassB == 0 {
		return impulseSolve{}, false
	}

	rA, rB, onA, onB := c.worldAnchors(a, b)
	ab := onB.Sub(onA)
	distance := ab.Len()
	if distance < minSeparation || dt <= 0 {
		return impulseSolve{}, false
	}
	abn := ab.Mul(1 / distance)

	v0 := a.LinearVelocity().Add(a.AngularVelocity().Cross(rA))
	v1 := b.LinearVelocity().Add(b.AngularVelocity().Cross(rB))

	invInertiaA, invInertiaB := a.InverseInertia(), b.InverseInertia()
	angular := invInertiaA.Mul3x1(rA.Cross(abn)).Cross(rA).
		Add(invInertiaB.Mul3x1(rB.Cross(abn)).Cross(rB))
	mass := invMassA + invMassB + abn.Dot(angular)
	if mass <= 0 {
		return impulseSolve{}, false
	}

	return impulseSolve{
		a:        a,
		b:        b,
		rA:       rA,
		rB:       rB,
		axis:     abn,
		relative: v0.Sub(v1),
		mass:     mass,
		bias:     -(baumgarteScalar / dt) * (distance - c.restDistance),
	}, true
}

// apply adds jn along the axis to A and subtracts it from B.
func (s impulseSolve) apply(jn float32) {
	impulse := s.axis.Mul(jn)

	s.a.SetLinearVelocity(s.a.LinearVelocity().Add(impulse.Mul(s.a.InverseMass())))
	s.b.SetLinearVelocity(s.b.LinearVelocity().Sub(impulse.Mul(s.b.InverseMass())))

	s.a.SetAngularVelocity(s.a.AngularVelocity().Add(s.a.InverseInertia().Mul3x1(s.rA.Cross(impulse))))
	s.b.SetAngularVelocity(s.b.AngularVelocity().Sub(s.b.InverseInertia().Mul3x1(s.rB.Cross(impulse))))
}
