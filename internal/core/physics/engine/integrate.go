package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

// linearState is a point moving under constant acceleration.
type linearState struct {
	pos mgl32.Vec3
	vel mgl32.Vec3
}

func (s linearState) derive(acc mgl32.Vec3) linearState {
	return linearState{pos: s.vel, vel: acc}
}

func (s linearState) advance(d linearState, dt float32) linearState {
	return linearState{pos: s.pos.Add(d.pos.Mul(dt)), vel: s.vel.Add(d.vel.Mul(dt))}
}

func rk2(s linearState, acc mgl32.Vec3, dt float32) linearState {
	k1 := s.derive(acc)
	k2 := s.advance(k1, dt/2).derive(acc)
	return s.advance(k2, dt)
}

func rk4(s linearState, acc mgl32.Vec3, dt float32) linearState {
	k1 := s.derive(acc)
	k2 := s.advance(k1, dt/2).derive(acc)
	k3 := s.advance(k2, dt/2).derive(acc)
	k4 := s.advance(k3, dt).derive(acc)

	sum := linearState{
		pos: k1.pos.Add(k2.pos.Mul(2)).Add(k3.pos.Mul(2)).Add(k4.pos),
		vel: k1.vel.Add(k2.vel.Mul(2)).Add(k3.vel.Mul(2)).Add(k4.vel),
	}
	return s.advance(sum, dt/6)
}

// integrateOrientation applies q += 0.5·dt·ω·q and renormalises.
func integrateOrientation(q mgl32.Quat, angular mgl32.Vec3, dt float32) mgl32.Quat {
	spin := mgl32.Quat{V: angular}.Mul(q).Scale(0.5 * dt)
	return q.Add(spin).Normalize()
}

// applyForces adds this step's gravity, force and torque to the velocities.
func applyForces(b *body.RigidBody, gravity mgl32.Vec3, dt float32) {
	invMass := b.InverseMass()
	acc := b.Force().Mul(invMass)
	if invMass > 0 {
		acc = acc.Add(gravity)
	}
	b.SetLinearVelocity(b.LinearVelocity().Add(acc.Mul(dt)))
	b.SetAngularVelocity(b.AngularVelocity().Add(b.InverseInertia().Mul3x1(b.Torque()).Mul(dt)))
}

// integrateBody moves b from its step-start velocity start to its current,
// solved velocity. The Runge-Kutta schemes treat the whole change, forces and
// constraint impulses alike, as a constant acceleration over the step.
func integrateBody(b *body.RigidBody, kind Integration, start mgl32.Vec3, damping, dt float32) {
	pos, vel := b.Position(), b.LinearVelocity()

	switch kind {
	case ExplicitEuler:
		pos = pos.Add(start.Mul(dt))
	case SemiImplicitEuler:
		pos = pos.Add(vel.Mul(dt))
	case RungeKutta2:
		pos = rk2(linearState{pos: pos, vel: start}, vel.Sub(start).Mul(1/dt), dt).pos
	case RungeKutta4:
		pos = rk4(linearState{pos: pos, vel: start}, vel.Sub(start).Mul(1/dt), dt).pos
	}

	b.SetPosition(pos)
	b.SetLinearVelocity(vel.Mul(damping))

	angular := b.AngularVelocity().Mul(damping)
	b.SetAngularVelocity(angular)
	if angular != (mgl32.Vec3{}) {
		b.SetOrientation(integrateOrientation(b.Orientation(), angular, dt))
	}
}
