package broadphase

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

func newBox(pos mgl32.Vec3, half float32) *body.RigidBody {
	p := body.DefaultProperties()
	p.Position = pos
	p.Shape = body.NewCuboid(mgl32.Vec3{half, half, half})
	return body.New(p)
}

func randomScene(rng *rand.Rand, n int) []*body.RigidBody {
	bodies := make([]*body.RigidBody, n)
	for i := range bodies {
		pos := mgl32.Vec3{rng.Float32() * 10, rng.Float32() * 10, rng.Float32() * 10}
		bodies[i] = newBox(pos, 0.25+rng.Float32())
		switch rng.Intn(5) {
		case 0:
			bodies[i].SetStatic(true)
		case 1:
			bodies[i].SetAtRest(true)
		}
	}
	return bodies
}

type pairKey struct{ a, b *body.RigidBody }

func keyOf(p CollisionPair) pairKey {
	if uintptrLess(p.B, p.A) {
		return pairKey{p.B, p.A}
	}
	return pairKey{p.A, p.B}
}

// uintptrLess gives pairs a canonical order without relying on input order.
func uintptrLess(a, b *body.RigidBody) bool {
	return a.Handle().Index < b.Handle().Index
}

func pairSet(pairs []CollisionPair) map[pairKey]struct{} {
	out := make(map[pairKey]struct{}, len(pairs))
	for _, p := range pairs {
		out[keyOf(p)] = struct{}{}
	}
	return out
}

func insertAll(bodies []*body.RigidBody) {
	set := body.NewSet()
	for _, b := range bodies {
		_, _ = set.Insert(b)
	}
}

func TestExcluded(t *testing.T) {
	dynamic := newBox(mgl32.Vec3{}, 1)
	static := newBox(mgl32.Vec3{}, 1)
	static.SetStatic(true)
	resting := newBox(mgl32.Vec3{}, 1)
	resting.SetAtRest(true)
	static2 := newBox(mgl32.Vec3{}, 1)
	static2.SetStatic(true)
	resting2 := newBox(mgl32.Vec3{}, 1)
	resting2.SetAtRest(true)

	require.True(t, Excluded(static, static2))
	require.True(t, Excluded(resting, resting2))
	require.True(t, Excluded(static, resting))
	require.True(t, Excluded(resting, static))
	require.False(t, Excluded(dynamic, static))
	require.False(t, Excluded(dynamic, resting))
	require.False(t, Excluded(dynamic, dynamic))
}

func TestBruteForce(t *testing.T) {
	t.Run("Ascending index order", func(t *testing.T) {
		bodies := []*body.RigidBody{
			newBox(mgl32.Vec3{0, 0, 0}, 0.5),
			newBox(mgl32.Vec3{100, 0, 0}, 0.5),
			newBox(mgl32.Vec3{200, 0, 0}, 0.5),
		}
		pairs := NewBruteForce().FindPotentialCollisionPairs(bodies, nil)
		require.Equal(t, []CollisionPair{
			{bodies[0], bodies[1]},
			{bodies[0], bodies[2]},
			{bodies[1], bodies[2]},
		}, pairs, "no overlap test is performed")
	})

	t.Run("Requires shapes", func(t *testing.T) {
		shapeless := body.New(body.DefaultProperties())
		bodies := []*body.RigidBody{newBox(mgl32.Vec3{}, 1), shapeless, newBox(mgl32.Vec3{}, 1)}
		pairs := NewBruteForce().FindPotentialCollisionPairs(bodies, nil)
		require.Equal(t, []CollisionPair{{bodies[0], bodies[2]}}, pairs)
	})

	t.Run("Appends without clearing", func(t *testing.T) {
		bodies := []*body.RigidBody{newBox(mgl32.Vec3{}, 1), newBox(mgl32.Vec3{}, 1)}
		bf := NewBruteForce()
		pairs := bf.FindPotentialCollisionPairs(bodies, nil)
		pairs = bf.FindPotentialCollisionPairs(bodies, pairs)
		require.Len(t, pairs, 2)
		require.Len(t, bf.FindPotentialCollisionPairs(bodies, pairs[:0]), 1)
	})
}

func TestSortAndSweep(t *testing.T) {
	t.Run("Axis selection", func(t *testing.T) {
		s, err := NewSortAndSweep(mgl32.Vec3{0, 2, 0})
		require.NoError(t, err)
		require.Equal(t, 1, s.AxisIndex())
		require.True(t, s.Aligned())

		require.NoError(t, s.SetAxis(mgl32.Vec3{0.1, -0.2, -0.97}))
		require.Equal(t, 2, s.AxisIndex())
		require.True(t, s.Aligned())

		require.NoError(t, s.SetAxis(mgl32.Vec3{1, 1, 0}))
		require.Equal(t, 0, s.AxisIndex(), "closest coordinate axis is used")
		require.False(t, s.Aligned())

		require.ErrorIs(t, s.SetAxis(mgl32.Vec3{}), ErrDegenerateSweepAxis)
		require.Equal(t, 0, s.AxisIndex(), "previous axis is kept")

		_, err = NewSortAndSweep(mgl32.Vec3{})
		require.ErrorIs(t, err, ErrDegenerateSweepAxis)
	})

	t.Run("Pairs overlap on the sweep axis", func(t *testing.T) {
		bodies := []*body.RigidBody{
			newBox(mgl32.Vec3{5, 0, 0}, 1),
			newBox(mgl32.Vec3{0, 0, 0}, 1),
			newBox(mgl32.Vec3{1.5, 0, 0}, 1),
			newBox(mgl32.Vec3{20, 0, 0}, 1),
		}
		a, b := bodies[1], bodies[2]
		s, err := NewSortAndSweep(mgl32.Vec3{1, 0, 0})
		require.NoError(t, err)

		pairs := s.FindPotentialCollisionPairs(bodies, nil)
		require.Equal(t, []CollisionPair{{a, b}}, pairs)
		require.Same(t, a, bodies[0], "bodies are sorted in place")
	})

	t.Run("Exclusion rules", func(t *testing.T) {
		static := newBox(mgl32.Vec3{}, 1)
		static.SetStatic(true)
		resting := newBox(mgl32.Vec3{0.5, 0, 0}, 1)
		resting.SetAtRest(true)
		dynamic := newBox(mgl32.Vec3{1, 0, 0}, 1)

		s, _ := NewSortAndSweep(mgl32.Vec3{1, 0, 0})
		pairs := s.FindPotentialCollisionPairs([]*body.RigidBody{static, resting, dynamic}, nil)
		require.Equal(t, []CollisionPair{{static, dynamic}, {resting, dynamic}}, pairs)
	})
}

func TestOctree(t *testing.T) {
	t.Run("Finds overlapping pairs once", func(t *testing.T) {
		bodies := []*body.RigidBody{
			newBox(mgl32.Vec3{0, 0, 0}, 1),
			newBox(mgl32.Vec3{1, 0, 0}, 1),
			newBox(mgl32.Vec3{50, 50, 50}, 1),
			newBox(mgl32.Vec3{51, 50, 50}, 1),
		}
		o := NewOctree(1, 4)
		pairs := o.FindPotentialCollisionPairs(bodies, nil)
		require.Len(t, pairs, 2)
		require.Contains(t, pairs, CollisionPair{bodies[0], bodies[1]})
		require.Contains(t, pairs, CollisionPair{bodies[2], bodies[3]})
		require.NotEmpty(t, o.Leaves())
	})

	t.Run("Skips shapeless bodies", func(t *testing.T) {
		bodies := []*body.RigidBody{newBox(mgl32.Vec3{}, 1), body.New(body.DefaultProperties())}
		require.Empty(t, NewOctree(0, 0).FindPotentialCollisionPairs(bodies, nil))
	})
}

func TestNew(t *testing.T) {
	bp, err := New(Options{})
	require.NoError(t, err)
	require.IsType(t, &SortAndSweep{}, bp)

	bp, err = New(Options{Kind: KindBruteForce})
	require.NoError(t, err)
	require.IsType(t, &BruteForce{}, bp)

	bp, err = New(Options{Kind: KindOctree})
	require.NoError(t, err)
	require.IsType(t, &Octree{}, bp)

	_, err = New(Options{Kind: "grid"})
	require.ErrorIs(t, err, ErrUnknownKind)
}

// Every strategy must agree on the exclusion rules and find every pair whose
// boxes really overlap; sort and sweep may only add pairs overlapping on its axis.
func TestStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		bodies := randomScene(rng, 40)
		insertAll(bodies)

		brute := pairSet(NewBruteForce().FindPotentialCollisionPairs(bodies, nil))

		sweep, _ := NewSortAndSweep(mgl32.Vec3{0, 1, 0})
		sorted := append([]*body.RigidBody(nil), bodies...)
		sweepPairs := sweep.FindPotentialCollisionPairs(sorted, nil)

		octreePairs := NewOctree(4, 6).FindPotentialCollisionPairs(bodies, nil)
		require.Len(t, pairSet(octreePairs), len(octreePairs), "octree emits no duplicates")

		for _, p := range append(sweepPairs, octreePairs...) {
			require.False(t, Excluded(p.A, p.B))
			require.NotSame(t, p.A, p.B)
			_, ok := brute[keyOf(p)]
			require.True(t, ok, "brute force is a superset")
		}

		for _, p := range sweepPairs {
			boxA, boxB := p.A.WorldSpaceAABB(), p.B.WorldSpaceAABB()
			require.Less(t, boxB.Min[1], boxA.Max[1])
			require.Less(t, boxA.Min[1], boxB.Max[1])
		}

		sweepSet := pairSet(sweepPairs)
		octreeSet := pairSet(octreePairs)
		for k := range brute {
			if !k.a.WorldSpaceAABB().Overlaps(k.b.WorldSpaceAABB()) {
				continue
			}
			_, ok := sweepSet[k]
			require.True(t, ok, "sort and sweep misses no overlapping pair")
			_, ok = octreeSet[k]
			require.True(t, ok, "octree misses no overlapping pair")
		}
	}
}
