package body

import "github.com/go-gl/mathgl/mgl32"

// ShapeType identifies a collision shape for config files and debug output.
type ShapeType uint8

const (
	ShapeSphere ShapeType = iota + 1
	ShapeCuboid
)

func (t ShapeType) String() string {
	switch t {
	case ShapeSphere:
		return "sphere"
	case ShapeCuboid:
		return "cuboid"
	default:
		return "unknown"
	}
}

// Shape is the part of a collision volume the core needs: a local-space bound
// and the inverse inertia tensor for a given inverse mass. Intersection tests
// belong to the narrowphase and are not part of this interface.
type Shape interface {
	Type() ShapeType
	LocalBoundingBox() BoundingBox
	InverseInertia(inverseMass float32) mgl32.Mat3
}

type Sphere struct {
	Radius float32
}

func NewSphere(radius float32) *Sphere {
	if radius <= 0 {
		radius = 0.5
	}
	return &Sphere{Radius: radius}
}

func (s *Sphere) Type() ShapeType { return ShapeSphere }

func (s *Sphere) LocalBoundingBox() BoundingBox {
	return BoxFromHalfExtents(mgl32.Vec3{s.Radius, s.Radius, s.Radius})
}

// InverseInertia of a solid sphere: I = 2/5 m r².
func (s *Sphere) InverseInertia(inverseMass float32) mgl32.Mat3 {
	i := 2.5 * inverseMass / (s.Radius * s.Radius)
	return mgl32.Diag3(mgl32.Vec3{i, i, i})
}

type Cuboid struct {
	HalfExtents mgl32.Vec3
}

func NewCuboid(halfExtents mgl32.Vec3) *Cuboid {
	for i := range halfExtents {
		if halfExtents[i] <= 0 {
			halfExtents[i] = 0.5
		}
	}
	return &Cuboid{HalfExtents: halfExtents}
}

func (c *Cuboid) Type() ShapeType { return ShapeCuboid }

func (c *Cuboid) LocalBoundingBox() BoundingBox {
	return BoxFromHalfExtents(c.HalfExtents)
}

// InverseInertia of a solid box, written in half extents: Ix = m/3 (hy² + hz²).
func (c *Cuboid) InverseInertia(inverseMass float32) mgl32.Mat3 {
	x2 := c.HalfExtents[0] * c.HalfExtents[0]
	y2 := c.HalfExtents[1] * c.HalfExtents[1]
	z2 := c.HalfExtents[2] * c.HalfExtents[2]
	return mgl32.Diag3(mgl32.Vec3{
		3 * inverseMass / (y2 + z2),
		3 * inverseMass / (x2 + z2),
		3 * inverseMass / (x2 + y2),
	})
}
