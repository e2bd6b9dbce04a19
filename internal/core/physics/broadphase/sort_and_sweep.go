package broadphase

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

// axisAlignment is the minimum normalised component an axis needs to count as
// aligned with a coordinate axis.
const axisAlignment = 0.9

var _ Broadphase = (*SortAndSweep)(nil)

// SortAndSweep sorts bodies by their lower bound on one coordinate axis and
// only pairs bodies whose intervals on that axis overlap.
type SortAndSweep struct {
	axis      mgl32.Vec3
	axisIndex int
	aligned   bool
}

// NewSortAndSweep builds a sweeper along axis. See SetAxis for how the axis is
// interpreted.
func NewSortAndSweep(axis mgl32.Vec3) (*SortAndSweep, error) {
	s := &SortAndSweep{axis: mgl32.Vec3{1, 0, 0}, aligned: true}
	if err := s.SetAxis(axis); err != nil {
		return nil, err
	}
	return s, nil
}

// SetAxis picks the coordinate axis to sweep along. Only the coordinate axes
// are supported: the component of the normalised axis with the largest
// magnitude wins, and Aligned reports whether it cleared the 0.9 tolerance.
// A zero or non-finite axis is rejected and the previous one is kept.
func (s *SortAndSweep) SetAxis(axis mgl32.Vec3) error {
	length := axis.Len()
	if length == 0 || math.IsNaN(float64(length)) || math.IsInf(float64(length), 0) {
		return ErrDegenerateSweepAxis
	}
	n := axis.Mul(1 / length)

	best := 0
	for i := 1; i < 3; i++ {
		if abs32(n[i]) > abs32(n[best]) {
			best = i
		}
	}
	s.axis = n
	s.axisIndex = best
	s.aligned = abs32(n[best]) > axisAlignment
	return nil
}

func (s *SortAndSweep) Axis() mgl32.Vec3 { return s.axis }

// AxisIndex is 0, 1 or 2 for X, Y or Z.
func (s *SortAndSweep) AxisIndex() int { return s.axisIndex }

// Aligned is false when the configured axis was not within tolerance of a
// coordinate axis and the sweep runs along the closest one instead.
func (s *SortAndSweep) Aligned() bool { return s.aligned }

// FindPotentialCollisionPairs sorts bodies in place by their AABB minimum on
// the sweep axis and emits every pair whose intervals overlap on it.
func (s *SortAndSweep) FindPotentialCollisionPairs(bodies []*body.RigidBody, pairs []CollisionPair) []CollisionPair {
	axis := s.axisIndex

	slices.SortFunc(bodies, func(a, b *body.RigidBody) int {
		return cmp.Compare(a.WorldSpaceAABB().Min[axis], b.WorldSpaceAABB().Min[axis])
	})

	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		right := a.WorldSpaceAABB().Max[axis]

		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			// sorted ascending: nothing further along can reach back to a
			if b.WorldSpaceAABB().Min[axis] >= right {
				break
			}
			if Excluded(a, b) {
				continue
			}
			pairs = append(pairs, CollisionPair{A: a, B: b})
		}
	}
	return pairs
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
