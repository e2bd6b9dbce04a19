package body

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultRestVelocityThreshold is the speed below which a body is considered settled.
	DefaultRestVelocityThreshold float32 = 0.0316

	// restAverageAlpha weights new samples in the rest test moving average.
	restAverageAlpha float32 = 0.7
)

// Properties describes a body at creation time.
type Properties struct {
	Position        mgl32.Vec3
	Orientation     mgl32.Quat
	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Force           mgl32.Vec3
	Torque          mgl32.Vec3
	Mass            float32
	Static          bool
	AtRest          bool
	Elasticity      float32
	Friction        float32
	Shape           Shape
}

// DefaultProperties returns a unit-mass dynamic body at the origin.
func DefaultProperties() Properties {
	return Properties{
		Orientation: mgl32.QuatIdent(),
		Mass:        1,
		Elasticity:  0.9,
		Friction:    0.8,
	}
}

// RigidBody is the simulation state of a single body. It is a plain data
// holder: integration and impulses are applied by the engine and constraints.
type RigidBody struct {
	handle Handle

	position        mgl32.Vec3
	orientation     mgl32.Quat
	linearVelocity  mgl32.Vec3
	angularVelocity mgl32.Vec3
	force           mgl32.Vec3
	torque          mgl32.Vec3

	inverseMass         float32
	localInverseInertia mgl32.Mat3

	static bool
	atRest bool

	elasticity float32
	friction   float32

	shape     Shape
	localAABB BoundingBox

	rotation        mgl32.Mat3
	rotationInvalid bool
	worldAABB       BoundingBox
	aabbInvalid     bool

	restThresholdSquared float32
	averageSummedSpeed   float32
}

// New creates a body from p. A non-positive mass is treated as 1 and a zero
// quaternion as the identity orientation.
func New(p Properties) *RigidBody {
	if p.Mass <= 0 {
		p.Mass = 1
	}
	if p.Orientation.Len() == 0 {
		p.Orientation = mgl32.QuatIdent()
	}

	b := &RigidBody{
		position:        p.Position,
		orientation:     p.Orientation.Normalize(),
		linearVelocity:  p.LinearVelocity,
		angularVelocity: p.AngularVelocity,
		force:           p.Force,
		torque:          p.Torque,
		inverseMass:     1 / p.Mass,
		atRest:          p.AtRest,
		elasticity:      p.Elasticity,
		friction:        p.Friction,
		localAABB:       BoxFromHalfExtents(mgl32.Vec3{0.5, 0.5, 0.5}),
		rotationInvalid: true,
		aabbInvalid:     true,
	}
	b.SetRestVelocityThreshold(DefaultRestVelocityThreshold)
	if p.Shape != nil {
		b.SetShape(p.Shape)
	}
	b.SetStatic(p.Static)
	return b
}

// Handle is the body's identity within its Set; zero until inserted.
func (b *RigidBody) Handle() Handle { return b.handle }

func (b *RigidBody) Position() mgl32.Vec3 { return b.position }

func (b *RigidBody) SetPosition(v mgl32.Vec3) {
	b.position = v
	b.aabbInvalid = true
}

func (b *RigidBody) Orientation() mgl32.Quat { return b.orientation }

func (b *RigidBody) SetOrientation(q mgl32.Quat) {
	if q.Len() == 0 {
		q = mgl32.QuatIdent()
	}
	b.orientation = q.Normalize()
	b.rotationInvalid = true
	b.aabbInvalid = true
}

// RotationMatrix returns the 3x3 rotation derived from the orientation, cached
// until the orientation next changes.
func (b *RigidBody) RotationMatrix() mgl32.Mat3 {
	if b.rotationInvalid {
		b.rotation = b.orientation.Mat4().Mat3()
		b.rotationInvalid = false
	}
	return b.rotation
}

func (b *RigidBody) LinearVelocity() mgl32.Vec3 { return b.linearVelocity }

// SetLinearVelocity is ignored for static bodies.
func (b *RigidBody) SetLinearVelocity(v mgl32.Vec3) {
	if b.static {
		return
	}
	b.linearVelocity = v
}

func (b *RigidBody) AngularVelocity() mgl32.Vec3 { return b.angularVelocity }

// SetAngularVelocity is ignored for static bodies.
func (b *RigidBody) SetAngularVelocity(v mgl32.Vec3) {
	if b.static {
		return
	}
	b.angularVelocity = v
}

func (b *RigidBody) Force() mgl32.Vec3 { return b.force }

func (b *RigidBody) SetForce(v mgl32.Vec3) {
	if b.static {
		return
	}
	b.force = v
}

func (b *RigidBody) Torque() mgl32.Vec3 { return b.torque }

func (b *RigidBody) SetTorque(v mgl32.Vec3) {
	if b.static {
		return
	}
	b.torque = v
}

// InverseMass is zero for static bodies.
func (b *RigidBody) InverseMass() float32 {
	if b.static {
		return 0
	}
	return b.inverseMass
}

// Mass returns the finite mass the body was configured with, even when static.
func (b *RigidBody) Mass() float32 {
	if b.inverseMass == 0 {
		return 0
	}
	return 1 / b.inverseMass
}

func (b *RigidBody) SetMass(m float32) error {
	if m <= 0 {
		return ErrInvalidMass
	}
	b.inverseMass = 1 / m
	b.refreshInertia()
	return nil
}

// SetInverseMass accepts zero for an infinite-mass body that is not flagged static.
func (b *RigidBody) SetInverseMass(v float32) {
	if v < 0 {
		v = 0
	}
	b.inverseMass = v
	b.refreshInertia()
}

// InverseInertia returns the world-space inverse inertia tensor R·I⁻¹·Rᵀ. It is
// the zero matrix for static bodies.
func (b *RigidBody) InverseInertia() mgl32.Mat3 {
	if b.static {
		return mgl32.Mat3{}
	}
	r := b.RotationMatrix()
	return r.Mul3(b.localInverseInertia).Mul3(r.Transpose())
}

func (b *RigidBody) LocalInverseInertia() mgl32.Mat3 { return b.localInverseInertia }

// SetLocalInverseInertia overrides the tensor derived from the shape.
func (b *RigidBody) SetLocalInverseInertia(m mgl32.Mat3) {
	b.localInverseInertia = m
}

func (b *RigidBody) IsStatic() bool { return b.static }

// SetStatic toggles infinite mass. Making a body static clears its velocities.
func (b *RigidBody) SetStatic(static bool) {
	b.static = static
	if static {
		b.linearVelocity = mgl32.Vec3{}
		b.angularVelocity = mgl32.Vec3{}
		b.force = mgl32.Vec3{}
		b.torque = mgl32.Vec3{}
	}
}

func (b *RigidBody) IsAtRest() bool { return b.atRest }

func (b *RigidBody) SetAtRest(atRest bool) { b.atRest = atRest }

func (b *RigidBody) IsAwake() bool { return !b.atRest }

// WakeUp clears the at-rest flag and the rest test history.
func (b *RigidBody) WakeUp() {
	b.atRest = false
	b.averageSummedSpeed = b.restThresholdSquared * 2
}

func (b *RigidBody) Elasticity() float32 { return b.elasticity }

func (b *RigidBody) Friction() float32 { return b.friction }

func (b *RigidBody) Shape() Shape { return b.shape }

// SetShape replaces the collision shape, rebuilding the inverse inertia and the
// local bounds from it. A nil shape keeps the previous bounds.
func (b *RigidBody) SetShape(s Shape) {
	b.shape = s
	if s == nil {
		return
	}
	b.localAABB = s.LocalBoundingBox()
	b.aabbInvalid = true
	b.refreshInertia()
}

func (b *RigidBody) LocalBoundingBox() BoundingBox { return b.localAABB }

func (b *RigidBody) SetLocalBoundingBox(box BoundingBox) {
	b.localAABB = box
	b.aabbInvalid = true
}

// WorldSpaceAABB returns the cached world bound, recomputing it after any pose change.
func (b *RigidBody) WorldSpaceAABB() BoundingBox {
	if b.aabbInvalid {
		b.worldAABB = b.localAABB.Transformed(b.RotationMatrix(), b.position)
		b.aabbInvalid = false
	}
	return b.worldAABB
}

// SetRestVelocityThreshold sets the speed under which RestTest puts the body to
// rest. A non-positive value disables the test.
func (b *RigidBody) SetRestVelocityThreshold(v float32) {
	if v <= 0 {
		b.restThresholdSquared = -1
		return
	}
	b.restThresholdSquared = v * v
	b.averageSummedSpeed = b.restThresholdSquared * 2
}

// RestTest feeds |v|²+|ω|² into an exponential moving average and marks the
// body at rest once the average drops under the threshold.
func (b *RigidBody) RestTest() {
	if b.restThresholdSquared <= 0 {
		return
	}
	v := b.linearVelocity.LenSqr() + b.angularVelocity.LenSqr()
	b.averageSummedSpeed += restAverageAlpha * (v - b.averageSummedSpeed)
	b.atRest = b.averageSummedSpeed <= b.restThresholdSquared
}

func (b *RigidBody) refreshInertia() {
	if b.shape != nil {
		b.localInverseInertia = b.shape.InverseInertia(b.inverseMass)
	}
}
