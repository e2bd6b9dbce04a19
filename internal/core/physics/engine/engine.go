// Package engine runs the rigid-body simulation: it owns the bodies and
// constraints and advances them with a fixed-step sequential-impulse solver.
//
// Each step runs, in order: force integration, broadphase, the optional pair
// handler, constraint solving, position integration and the rest test. The
// engine is single-threaded; callers must not touch bodies while Step or
// Update runs.
package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/zeusync/impulse/internal/core/events/bus"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/broadphase"
	"github.com/zeusync/impulse/internal/core/physics/constraint"
)

// PairHandler receives the broadphase pairs of a step before the solver runs.
// It stands in for a narrowphase and may change body velocities.
type PairHandler func(pairs []broadphase.CollisionPair)

type Option func(*Engine)

func WithLogger(l log.Log) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEventBus publishes rest, wake, pruning and overrun events to b.
func WithEventBus(b bus.EventBus) Option {
	return func(e *Engine) { e.events = b }
}

// WithBroadphase overrides the strategy built from Settings.Broadphase.
func WithBroadphase(bp broadphase.Broadphase) Option {
	return func(e *Engine) { e.broadphase = bp }
}

func WithPairHandler(h PairHandler) Option {
	return func(e *Engine) { e.pairHandler = h }
}

// Stats describes the most recent step.
type Stats struct {
	Steps       uint64
	Bodies      int
	Constraints int
	Pairs       int
	Awake       int
	Pruned      uint64
	Overruns    uint64
	StepTime    time.Duration
}

type Engine struct {
	logger log.Log
	events bus.EventBus
	runID  uuid.UUID
	source string

	settings    Settings
	bodies      *body.Set
	constraints []constraint.Constraint
	broadphase  broadphase.Broadphase
	pairHandler PairHandler

	accumulator float32
	steps       uint64
	time        float64
	stats       Stats

	// per-step scratch
	bodyList  []*body.RigidBody
	sweepList []*body.RigidBody
	startVel  []mgl32.Vec3
	pairs     []broadphase.CollisionPair
	active    []constraint.Constraint
}

// New creates an engine with no bodies.
func New(settings Settings, opts ...Option) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		runID:    uuid.New(),
		settings: settings,
		bodies:   body.NewSet(),
	}
	e.source = "engine:" + e.runID.String()
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = log.NewNop()
	}
	e.logger = e.logger.With(log.String("run", e.runID.String()))

	if e.broadphase == nil {
		bp, err := broadphase.New(settings.Broadphase)
		if err != nil {
			return nil, fmt.Errorf("engine broadphase: %w", err)
		}
		e.broadphase = bp
	}

	e.logger.Debug("Engine created",
		log.Float32("timestep", settings.Timestep),
		log.String("integration", settings.Integration.String()),
		log.Int("iterations", settings.SolverIterations))
	return e, nil
}

// RunID identifies this engine instance in logs and events.
func (e *Engine) RunID() uuid.UUID { return e.runID }

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) Gravity() mgl32.Vec3 { return e.settings.Gravity }

func (e *Engine) SetGravity(g mgl32.Vec3) { e.settings.Gravity = g }

func (e *Engine) IsPaused() bool { return e.settings.Paused }

// SetPaused stops Update from advancing the simulation. Step still runs.
func (e *Engine) SetPaused(paused bool) { e.settings.Paused = paused }

func (e *Engine) SetDamping(d float32) error {
	if !(d >= 0 && d <= 1) {
		return fmt.Errorf("damping %v: %w", d, ErrInvalidSettings)
	}
	e.settings.Damping = d
	return nil
}

func (e *Engine) SetIntegration(kind Integration) error {
	if int(kind) >= len(integrationNames) {
		return fmt.Errorf("%s: %w", kind, ErrUnknownIntegration)
	}
	e.settings.Integration = kind
	return nil
}

func (e *Engine) SetSolverIterations(n int) {
	e.settings.SolverIterations = max(n, 0)
}

func (e *Engine) DebugFlags() DebugFlags { return e.settings.DebugFlags }

func (e *Engine) SetDebugFlags(f DebugFlags) { e.settings.DebugFlags = f }

func (e *Engine) Broadphase() broadphase.Broadphase { return e.broadphase }

func (e *Engine) SetBroadphase(bp broadphase.Broadphase) { e.broadphase = bp }

func (e *Engine) SetPairHandler(h PairHandler) { e.pairHandler = h }

// Bodies exposes the body arena. Constraints resolve their handles through it.
func (e *Engine) Bodies() *body.Set { return e.bodies }

// AddBody inserts b and applies the engine's rest threshold to it.
func (e *Engine) AddBody(b *body.RigidBody) (body.Handle, error) {
	h, err := e.bodies.Insert(b)
	if err != nil {
		return body.NilHandle, err
	}
	b.SetRestVelocityThreshold(e.settings.RestVelocityThreshold)
	return h, nil
}

// RemoveBody deletes the body. Constraints still referring to it are pruned
// at the start of the next step.
func (e *Engine) RemoveBody(h body.Handle) error {
	return e.bodies.Remove(h)
}

func (e *Engine) Body(h body.Handle) (*body.RigidBody, bool) {
	return e.bodies.Get(h)
}

// WakeBody clears the at-rest flag of the body behind h.
func (e *Engine) WakeBody(h body.Handle) error {
	b, ok := e.bodies.Get(h)
	if !ok {
		return fmt.Errorf("wake %s: %w", h, body.ErrBodyNotFound)
	}
	e.wake(b)
	return nil
}

// AddConstraint appends c to the solve order. Every body it refers to must
// be live.
func (e *Engine) AddConstraint(c constraint.Constraint) error {
	for _, h := range c.Bodies() {
		if !e.bodies.Contains(h) {
			return fmt.Errorf("%s constraint on %s: %w", c.Kind(), h, ErrDanglingConstraint)
		}
	}
	e.constraints = append(e.constraints, c)
	return nil
}

// RemoveConstraint drops c, keeping the order of the others.
func (e *Engine) RemoveConstraint(c constraint.Constraint) bool {
	n := len(e.constraints)
	e.constraints = slices.DeleteFunc(e.constraints, func(o constraint.Constraint) bool { return o == c })
	return len(e.constraints) != n
}

func (e *Engine) ClearConstraints() {
	clear(e.constraints)
	e.constraints = e.constraints[:0]
}

// Constraints returns the constraints in solve order.
func (e *Engine) Constraints() []constraint.Constraint {
	return slices.Clone(e.constraints)
}

// Pairs returns the broadphase output of the last step. The slice is reused
// by the next step.
func (e *Engine) Pairs() []broadphase.CollisionPair { return e.pairs }

func (e *Engine) Stats() Stats {
	s := e.stats
	s.Bodies = e.bodies.Len()
	s.Constraints = len(e.constraints)
	return s
}

// StepCount is the number of steps run so far.
func (e *Engine) StepCount() uint64 { return e.steps }

// Time is the simulated time in seconds.
func (e *Engine) Time() float64 { return e.time }

// Update advances the simulation by a frame of length frameDt seconds. With a
// fixed timestep it runs at most MaxUpdatesPerFrame steps and drops whatever
// time is still owed after that. It returns the number of steps run.
func (e *Engine) Update(frameDt float32) int {
	if e.settings.Paused || !(frameDt > 0) {
		return 0
	}

	if e.settings.VariableTimestep {
		e.Step(frameDt)
		return 1
	}

	ts := e.settings.Timestep
	e.accumulator += frameDt

	steps := 0
	for e.accumulator >= ts && steps < e.settings.MaxUpdatesPerFrame {
		e.accumulator -= ts
		e.Step(ts)
		steps++
	}

	if e.accumulator >= ts {
		dropped := e.accumulator
		e.accumulator = 0
		e.stats.Overruns++

		e.logger.Warn("Physics too slow to run in real time",
			log.Int("steps", steps),
			log.Float32("dropped", dropped))
		e.publish(EventStepOverrun, OverrunEvent{Steps: steps, Dropped: dropped, Step: e.steps})
	}
	return steps
}

// Step runs one simulation step of length dt seconds.
func (e *Engine) Step(dt float32) {
	if !(dt > 0) {
		return
	}
	start := time.Now()

	e.bodyList = e.bodies.Bodies(e.bodyList[:0])

	e.integrateForces(dt)
	e.detectPairs()
	if e.pairHandler != nil && len(e.pairs) > 0 {
		e.pairHandler(e.pairs)
	}
	e.pruneConstraints()
	e.solveConstraints(dt)
	e.integrateVelocities(dt)
	awake := e.restTest()

	e.steps++
	e.time += float64(dt)

	e.stats.Steps = e.steps
	e.stats.Pairs = len(e.pairs)
	e.stats.Awake = awake
	e.stats.StepTime = time.Since(start)
}

func moving(b *body.RigidBody) bool {
	return !b.IsStatic() && b.IsAwake()
}

// integrateForces records each body's step-start velocity, then applies forces.
func (e *Engine) integrateForces(dt float32) {
	e.startVel = slices.Grow(e.startVel[:0], len(e.bodyList))[:len(e.bodyList)]
	for i, b := range e.bodyList {
		e.startVel[i] = b.LinearVelocity()
		if moving(b) {
			applyForces(b, e.settings.Gravity, dt)
		}
	}
}

func (e *Engine) detectPairs() {
	// strategies may reorder their input
	e.sweepList = append(e.sweepList[:0], e.bodyList...)
	clear(e.pairs)
	e.pairs = e.broadphase.FindPotentialCollisionPairs(e.sweepList, e.pairs[:0])
}

// pruneConstraints drops constraints that refer to removed bodies.
func (e *Engine) pruneConstraints() {
	e.constraints = slices.DeleteFunc(e.constraints, func(c constraint.Constraint) bool {
		handles := c.Bodies()
		for _, h := range handles {
			if e.bodies.Contains(h) {
				continue
			}
			e.stats.Pruned++
			e.logger.Warn("Pruning constraint with a removed body",
				log.String("kind", string(c.Kind())),
				log.String("body", h.String()),
				log.Uint64("step", e.steps))
			e.publish(EventConstraintPruned, ConstraintPrunedEvent{Kind: c.Kind(), Bodies: handles, Step: e.steps})
			return true
		}
		return false
	})
}

// solveConstraints runs the solver over every constraint touching a moving
// body. Resting bodies tied to a moving one are woken first.
func (e *Engine) solveConstraints(dt float32) {
	e.active = e.active[:0]
	for _, c := range e.constraints {
		handles := c.Bodies()
		live := false
		for _, h := range handles {
			if b, ok := e.bodies.Get(h); ok && moving(b) {
				live = true
				break
			}
		}
		if !live {
			continue
		}
		for _, h := range handles {
			if b, ok := e.bodies.Get(h); ok && !b.IsStatic() && b.IsAtRest() {
				e.wake(b)
			}
		}
		e.active = append(e.active, c)
	}

	for _i := 0; _i < e.settings.SolverIterations; _i++ {
		for _, c := range e.active {
			c.ApplyImpulse(e.bodies, dt)
		}
	}
	clear(e.active)
}

func (e *Engine) integrateVelocities(dt float32) {
	for i, b := range e.bodyList {
		if !moving(b) {
			continue
		}
		integrateBody(b, e.settings.Integration, e.startVel[i], e.settings.Damping, dt)
	}
}

// restTest returns the number of bodies still moving.
func (e *Engine) restTest() int {
	awake := 0
	for _, b := range e.bodyList {
		if !moving(b) {
			continue
		}
		b.RestTest()
		if b.IsAtRest() {
			e.publish(EventBodyRest, BodyEvent{Body: b.Handle(), Step: e.steps})
			continue
		}
		awake++
	}
	return awake
}

func (e *Engine) wake(b *body.RigidBody) {
	if b.IsAwake() {
		return
	}
	b.WakeUp()
	e.publish(EventBodyWake, BodyEvent{Body: b.Handle(), Step: e.steps})
}
