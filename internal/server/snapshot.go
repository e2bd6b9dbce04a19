package server

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/debugdraw"
	"github.com/zeusync/impulse/internal/core/physics/engine"
)

// BodyState is the per-body part of a Snapshot.
type BodyState struct {
	Handle   string     `json:"handle"`
	Position mgl32.Vec3 `json:"position"`
	// Orientation is a quaternion as [w, x, y, z].
	Orientation     [4]float32 `json:"orientation"`
	LinearVelocity  mgl32.Vec3 `json:"linearVelocity"`
	AngularVelocity mgl32.Vec3 `json:"angularVelocity"`
	Static          bool       `json:"static"`
	AtRest          bool       `json:"atRest"`
}

// Snapshot is what viewers receive after a step.
type Snapshot struct {
	Run    string            `json:"run"`
	Step   uint64            `json:"step"`
	Time   float64           `json:"time"`
	Hash   uint64            `json:"hash"`
	Pairs  int               `json:"pairs"`
	Bodies []BodyState       `json:"bodies"`
	Lines  []debugdraw.Line  `json:"lines"`
	Points []debugdraw.Point `json:"points"`
}

// Capture reads the engine state after a step. When rec is non-nil it is reset
// and filled with the engine's debug geometry; the snapshot then shares its
// buffers until the next Reset.
func Capture(e *engine.Engine, rec *debugdraw.Recorder) Snapshot {
	snap := Snapshot{
		Run:    e.RunID().String(),
		Step:   e.StepCount(),
		Time:   e.Time(),
		Hash:   e.StateHash(),
		Pairs:  len(e.Pairs()),
		Bodies: make([]BodyState, 0, e.Bodies().Len()),
	}
	e.Bodies().Each(func(h body.Handle, b *body.RigidBody) bool {
		q := b.Orientation()
		snap.Bodies = append(snap.Bodies, BodyState{
			Handle:          h.String(),
			Position:        b.Position(),
			Orientation:     [4]float32{q.W, q.V.X(), q.V.Y(), q.V.Z()},
			LinearVelocity:  b.LinearVelocity(),
			AngularVelocity: b.AngularVelocity(),
			Static:          b.IsStatic(),
			AtRest:          b.IsAtRest(),
		})
		return true
	})

	if rec != nil {
		rec.Reset()
		e.DebugDraw(rec)
		snap.Lines = rec.Lines()
		snap.Points = rec.Points()
	}
	return snap
}
