package broadphase

import "github.com/zeusync/impulse/internal/core/physics/body"

var _ Broadphase = (*BruteForce)(nil)

// BruteForce pairs every body with every other one. Pairs come out in
// ascending (i, j) index order, which makes it a reference for the other
// strategies.
type BruteForce struct{}

func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

// FindPotentialCollisionPairs skips bodies without a shape and pairs where
// neither side is awake, on top of the shared exclusion rules. Bounds are not
// tested.
func (*BruteForce) FindPotentialCollisionPairs(bodies []*body.RigidBody, pairs []CollisionPair) []CollisionPair {
	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		if a.Shape() == nil {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if b.Shape() == nil {
				continue
			}
			if !a.IsAwake() && !b.IsAwake() {
				continue
			}
			if Excluded(a, b) {
				continue
			}
			pairs = append(pairs, CollisionPair{A: a, B: b})
		}
	}
	return pairs
}
