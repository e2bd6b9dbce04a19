// Package broadphase proposes pairs of bodies that might be touching. It only
// looks at flags and bounding boxes; shape intersection is left to the caller.
package broadphase

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

// CollisionPair holds two bodies from the same pass. Pairs are rebuilt every
// step and must not be kept across steps.
type CollisionPair struct {
	A *body.RigidBody
	B *body.RigidBody
}

// Broadphase appends candidate pairs for bodies to pairs and returns the
// extended slice. It never truncates pairs; pass pairs[:0] to start fresh.
// Implementations may reorder bodies.
type Broadphase interface {
	FindPotentialCollisionPairs(bodies []*body.RigidBody, pairs []CollisionPair) []CollisionPair
}

// Kind names the built-in strategies for config files.
type Kind string

const (
	KindBruteForce   Kind = "brute_force"
	KindSortAndSweep Kind = "sort_and_sweep"
	KindOctree       Kind = "octree"
)

// Excluded reports whether a pair can never produce new contact information:
// both at rest, both static, or one static and the other at rest.
func Excluded(a, b *body.RigidBody) bool {
	immobileA := a.IsStatic() || a.IsAtRest()
	immobileB := b.IsStatic() || b.IsAtRest()
	return immobileA && immobileB
}

// Options selects and parameterises a strategy.
type Options struct {
	Kind             Kind
	SweepAxis        mgl32.Vec3
	OctreeMaxObjects int
	OctreeMaxDepth   int
}

// New builds the strategy named by opts.Kind. An empty kind means sort and sweep.
func New(opts Options) (Broadphase, error) {
	switch opts.Kind {
	case KindBruteForce:
		return NewBruteForce(), nil
	case KindSortAndSweep, "":
		axis := opts.SweepAxis
		if axis == (mgl32.Vec3{}) {
			axis = mgl32.Vec3{1, 0, 0}
		}
		return NewSortAndSweep(axis)
	case KindOctree:
		return NewOctree(opts.OctreeMaxObjects, opts.OctreeMaxDepth), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}
