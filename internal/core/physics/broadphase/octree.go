package broadphase

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

const (
	DefaultOctreeMaxObjects = 10
	DefaultOctreeMaxDepth   = 5
)

// divisionCorners selects min/center/max per axis for each of the eight
// children: lower x, y, z then upper x, y, z.
var divisionCorners = [8][6]int{
	{0, 0, 0, 1, 1, 1},
	{1, 0, 0, 2, 1, 1},
	{0, 1, 0, 1, 2, 1},
	{1, 1, 0, 2, 2, 1},
	{0, 0, 1, 1, 1, 2},
	{1, 0, 1, 2, 1, 2},
	{0, 1, 1, 1, 2, 2},
	{1, 1, 1, 2, 2, 2},
}

type octreeNode struct {
	box     body.BoundingBox
	objects []int
}

var _ Broadphase = (*Octree)(nil)

// Octree recursively splits the bounds of all shaped bodies into octants and
// pairs bodies that share a leaf. A body straddling octants lands in each of
// them; duplicate pairs are dropped.
type Octree struct {
	maxObjects int
	maxDepth   int

	nodes  []octreeNode
	leaves []int
	seen   map[uint64]struct{}
}

func NewOctree(maxObjectsPerPartition, maxDepth int) *Octree {
	if maxObjectsPerPartition <= 0 {
		maxObjectsPerPartition = DefaultOctreeMaxObjects
	}
	if maxDepth <= 0 {
		maxDepth = DefaultOctreeMaxDepth
	}
	return &Octree{
		maxObjects: maxObjectsPerPartition,
		maxDepth:   maxDepth,
		seen:       make(map[uint64]struct{}),
	}
}

// Leaves returns the bounds of the leaf partitions built by the last pass.
func (o *Octree) Leaves() []body.BoundingBox {
	out := make([]body.BoundingBox, 0, len(o.leaves))
	for _, idx := range o.leaves {
		out = append(out, o.nodes[idx].box)
	}
	return out
}

func (o *Octree) FindPotentialCollisionPairs(bodies []*body.RigidBody, pairs []CollisionPair) []CollisionPair {
	o.nodes = o.nodes[:0]
	o.leaves = o.leaves[:0]
	clear(o.seen)

	root := octreeNode{box: body.EmptyBox()}
	for i, b := range bodies {
		if b.Shape() == nil {
			continue
		}
		root.box.Merge(b.WorldSpaceAABB())
		root.objects = append(root.objects, i)
	}
	if len(root.objects) < 2 {
		return pairs
	}
	o.nodes = append(o.nodes, root)
	o.divide(bodies, 0, 0)

	for _, leaf := range o.leaves {
		objects := o.nodes[leaf].objects
		for x := 0; x < len(objects); x++ {
			for y := x + 1; y < len(objects); y++ {
				i, j := objects[x], objects[y]
				if i > j {
					i, j = j, i
				}
				a, b := bodies[i], bodies[j]
				if Excluded(a, b) {
					continue
				}
				key := uint64(i)<<32 | uint64(j)
				if _, dup := o.seen[key]; dup {
					continue
				}
				o.seen[key] = struct{}{}
				pairs = append(pairs, CollisionPair{A: a, B: b})
			}
		}
	}
	return pairs
}

func (o *Octree) divide(bodies []*body.RigidBody, nodeIdx, depth int) {
	node := o.nodes[nodeIdx]
	if depth >= o.maxDepth || len(node.objects) <= o.maxObjects {
		if len(node.objects) > 0 {
			o.leaves = append(o.leaves, nodeIdx)
		}
		return
	}

	points := [3]mgl32.Vec3{node.box.Min, node.box.Center(), node.box.Max}
	for _, c := range divisionCorners {
		child := octreeNode{box: body.BoundingBox{
			Min: mgl32.Vec3{points[c[0]][0], points[c[1]][1], points[c[2]][2]},
			Max: mgl32.Vec3{points[c[3]][0], points[c[4]][1], points[c[5]][2]},
		}}
		for _, idx := range node.objects {
			if child.box.Classify(bodies[idx].WorldSpaceAABB()) != body.Outside {
				child.objects = append(child.objects, idx)
			}
		}
		if len(child.objects) == 0 {
			continue
		}
		o.nodes = append(o.nodes, child)
		o.divide(bodies, len(o.nodes)-1, depth+1)
	}
}
