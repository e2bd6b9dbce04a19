package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/broadphase"
)

const (
	DefaultTimestep           float32 = 1.0 / 60.0
	DefaultMaxUpdatesPerFrame         = 5
	DefaultDamping            float32 = 0.999
	DefaultSolverIterations           = 20
)

// Integration selects how velocities are turned into positions.
type Integration uint8

const (
	ExplicitEuler Integration = iota
	SemiImplicitEuler
	RungeKutta2
	RungeKutta4
)

var integrationNames = [...]string{
	ExplicitEuler:     "explicit_euler",
	SemiImplicitEuler: "semi_implicit_euler",
	RungeKutta2:       "runge_kutta_2",
	RungeKutta4:       "runge_kutta_4",
}

func (i Integration) String() string {
	if int(i) < len(integrationNames) {
		return integrationNames[i]
	}
	return fmt.Sprintf("Integration(%d)", i)
}

// ParseIntegration accepts the String form, case-insensitively, plus the short
// aliases "euler", "semi_implicit", "rk2" and "rk4".
func ParseIntegration(s string) (Integration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "explicit_euler", "euler":
		return ExplicitEuler, nil
	case "semi_implicit_euler", "semi_implicit":
		return SemiImplicitEuler, nil
	case "runge_kutta_2", "rk2":
		return RungeKutta2, nil
	case "runge_kutta_4", "rk4":
		return RungeKutta4, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownIntegration)
	}
}

// DebugFlags selects what DebugDraw emits.
type DebugFlags uint8

const (
	DebugConstraints DebugFlags = 1 << iota
	DebugAABB
	DebugLinearVelocity
	DebugBroadphase

	DebugAll = DebugConstraints | DebugAABB | DebugLinearVelocity | DebugBroadphase
)

// Settings configures an Engine. The zero value is not usable; start from
// DefaultSettings.
type Settings struct {
	Gravity mgl32.Vec3
	// Timestep is the fixed step length used by Update.
	Timestep float32
	// MaxUpdatesPerFrame caps the fixed steps Update may run for one frame.
	MaxUpdatesPerFrame int
	// VariableTimestep makes Update run exactly one step of the frame length.
	VariableTimestep bool
	// Damping scales linear and angular velocity once per step.
	Damping          float32
	SolverIterations int
	Integration      Integration
	// RestVelocityThreshold is applied to bodies as they are added. Zero or
	// less disables the rest test.
	RestVelocityThreshold float32
	Paused                bool
	DebugFlags            DebugFlags
	Broadphase            broadphase.Options
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:               mgl32.Vec3{0, -9.81, 0},
		Timestep:              DefaultTimestep,
		MaxUpdatesPerFrame:    DefaultMaxUpdatesPerFrame,
		Damping:               DefaultDamping,
		SolverIterations:      DefaultSolverIterations,
		Integration:           RungeKutta4,
		RestVelocityThreshold: body.DefaultRestVelocityThreshold,
		DebugFlags:            DebugConstraints,
		Broadphase: broadphase.Options{
			Kind:             broadphase.KindSortAndSweep,
			SweepAxis:        mgl32.Vec3{1, 0, 0},
			OctreeMaxObjects: broadphase.DefaultOctreeMaxObjects,
			OctreeMaxDepth:   broadphase.DefaultOctreeMaxDepth,
		},
	}
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	var errs []error
	if !(s.Timestep > 0) {
		errs = append(errs, fmt.Errorf("timestep %v: %w", s.Timestep, ErrInvalidSettings))
	}
	if s.MaxUpdatesPerFrame < 1 {
		errs = append(errs, fmt.Errorf("max updates per frame %d: %w", s.MaxUpdatesPerFrame, ErrInvalidSettings))
	}
	if !(s.Damping >= 0 && s.Damping <= 1) {
		errs = append(errs, fmt.Errorf("damping %v: %w", s.Damping, ErrInvalidSettings))
	}
	if s.SolverIterations < 0 {
		errs = append(errs, fmt.Errorf("solver iterations %d: %w", s.SolverIterations, ErrInvalidSettings))
	}
	if int(s.Integration) >= len(integrationNames) {
		errs = append(errs, fmt.Errorf("%s: %w", s.Integration, ErrUnknownIntegration))
	}
	return errors.Join(errs...)
}
