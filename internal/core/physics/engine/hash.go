package engine

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
)

// StateHash fingerprints the step count and the kinematic state of every body
// in slot order. Two runs from the same initial state with the same inputs
// produce the same hash.
func (e *Engine) StateHash() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 128)
	buf = binary.LittleEndian.AppendUint64(buf, e.steps)
	_, _ = d.Write(buf)

	e.bodies.Each(func(h body.Handle, b *body.RigidBody) bool {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, h.Index)
		buf = binary.LittleEndian.AppendUint32(buf, h.Generation)
		buf = appendVec3(buf, b.Position())
		q := b.Orientation()
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(q.W))
		buf = appendVec3(buf, q.V)
		buf = appendVec3(buf, b.LinearVelocity())
		buf = appendVec3(buf, b.AngularVelocity())
		var flags byte
		if b.IsStatic() {
			flags |= 1
		}
		if b.IsAtRest() {
			flags |= 2
		}
		buf = append(buf, flags)
		_, _ = d.Write(buf)
		return true
	})
	return d.Sum64()
}

func appendVec3(buf []byte, v mgl32.Vec3) []byte {
	for _, c := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
	}
	return buf
}
