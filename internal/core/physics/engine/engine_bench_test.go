package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/constraint"
)

func benchmarkChain(b *testing.B, links int) {
	e, err := New(DefaultSettings(), WithLogger(log.NewNop()))
	if err != nil {
		b.Fatal(err)
	}

	p := body.DefaultProperties()
	p.Static = true
	p.Shape = body.NewSphere(0.25)
	prev, _ := e.AddBody(body.New(p))
	p.Static = false
	for i := 1; i <= links; i++ {
		p.Position = mgl32.Vec3{float32(i) * 0.6, 0, 0}
		h, _ := e.AddBody(body.New(p))
		c, err := constraint.NewDistanceCentres(e.Bodies(), prev, h)
		if err != nil {
			b.Fatal(err)
		}
		_ = e.AddConstraint(c)
		prev = h
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Step(DefaultTimestep)
	}
}

func BenchmarkStep_Chain10(b *testing.B) {
	benchmarkChain(b, 10)
}

func BenchmarkStep_Chain100(b *testing.B) {
	benchmarkChain(b, 100)
}
