package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Intersection classifies how one box relates to another.
type Intersection uint8

const (
	Outside Intersection = iota
	Intersects
	Inside
)

// BoundingBox is an axis-aligned box described by its min and max corners.
type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns an inverted box that any Merge call will replace.
func EmptyBox() BoundingBox {
	inf := float32(math.Inf(1))
	return BoundingBox{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewBox returns the box spanning the two corners in any order.
func NewBox(a, b mgl32.Vec3) BoundingBox {
	box := EmptyBox()
	box.MergePoint(a)
	box.MergePoint(b)
	return box
}

// BoxFromHalfExtents returns a box centred on the origin.
func BoxFromHalfExtents(half mgl32.Vec3) BoundingBox {
	return BoundingBox{Min: half.Mul(-1), Max: half}
}

func (b BoundingBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

func (b BoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b BoundingBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b *BoundingBox) MergePoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

func (b *BoundingBox) Merge(other BoundingBox) {
	if other.IsEmpty() {
		return
	}
	b.MergePoint(other.Min)
	b.MergePoint(other.Max)
}

// Overlaps reports whether the boxes share volume. Touching faces do not count.
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] <= other.Min[i] || other.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

// Classify reports whether other lies fully inside b, partially overlaps it, or is outside.
func (b BoundingBox) Classify(other BoundingBox) Intersection {
	inside := true
	for i := 0; i < 3; i++ {
		if other.Max[i] < b.Min[i] || other.Min[i] > b.Max[i] {
			return Outside
		}
		if other.Min[i] < b.Min[i] || other.Max[i] > b.Max[i] {
			inside = false
		}
	}
	if inside {
		return Inside
	}
	return Intersects
}

// Transformed returns the world-space AABB enclosing b after rotating it by
// rotation and moving it by translation.
func (b BoundingBox) Transformed(rotation mgl32.Mat3, translation mgl32.Vec3) BoundingBox {
	if b.IsEmpty() {
		return b
	}
	center := rotation.Mul3x1(b.Center()).Add(translation)
	half := b.Size().Mul(0.5)

	var extent mgl32.Vec3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			extent[row] += abs32(rotation.At(row, col)) * half[col]
		}
	}
	return BoundingBox{Min: center.Sub(extent), Max: center.Add(extent)}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
