package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/constraint"
	"github.com/zeusync/impulse/internal/core/physics/engine"
)

// Scene lists the bodies and constraints of a simulation.
type Scene struct {
	Name string `json:"name" yaml:"name"`
	// Steps is how many fixed steps a batch run simulates.
	Steps       int                `json:"steps" yaml:"steps"`
	Bodies      []BodyConfig       `json:"bodies" yaml:"bodies"`
	Constraints []ConstraintConfig `json:"constraints" yaml:"constraints"`
}

type BodyConfig struct {
	Name            string      `json:"name" yaml:"name"`
	Position        mgl32.Vec3  `json:"position" yaml:"position"`
	Rotation        *Rotation   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	LinearVelocity  mgl32.Vec3  `json:"linear_velocity" yaml:"linear_velocity"`
	AngularVelocity mgl32.Vec3  `json:"angular_velocity" yaml:"angular_velocity"`
	Force           mgl32.Vec3  `json:"force" yaml:"force"`
	Torque          mgl32.Vec3  `json:"torque" yaml:"torque"`
	Mass            float32     `json:"mass" yaml:"mass"`
	Static          bool        `json:"static" yaml:"static"`
	AtRest          bool        `json:"at_rest" yaml:"at_rest"`
	Elasticity      *float32    `json:"elasticity,omitempty" yaml:"elasticity,omitempty"`
	Friction        *float32    `json:"friction,omitempty" yaml:"friction,omitempty"`
	Shape           ShapeConfig `json:"shape" yaml:"shape"`
}

// Rotation is an axis-angle orientation.
type Rotation struct {
	Axis    mgl32.Vec3 `json:"axis" yaml:"axis"`
	Degrees float32    `json:"degrees" yaml:"degrees"`
}

type ShapeConfig struct {
	// Type is "sphere", "cuboid" or empty for no shape.
	Type        string     `json:"type" yaml:"type"`
	Radius      float32    `json:"radius,omitempty" yaml:"radius,omitempty"`
	HalfExtents mgl32.Vec3 `json:"half_extents,omitempty" yaml:"half_extents,omitempty"`
}

type ConstraintConfig struct {
	// Type is "distance", "spring" or "axis".
	Type string `json:"type" yaml:"type"`
	A    string `json:"a" yaml:"a"`
	B    string `json:"b,omitempty" yaml:"b,omitempty"`
	// AnchorA and AnchorB are world-space points; nil means the centre of mass.
	AnchorA *mgl32.Vec3 `json:"anchor_a,omitempty" yaml:"anchor_a,omitempty"`
	AnchorB *mgl32.Vec3 `json:"anchor_b,omitempty" yaml:"anchor_b,omitempty"`
	Spring  *float32    `json:"spring,omitempty" yaml:"spring,omitempty"`
	Damping *float32    `json:"damping,omitempty" yaml:"damping,omitempty"`
	Axes    string      `json:"axes,omitempty" yaml:"axes,omitempty"`
}

func (r *Rotation) Quat() mgl32.Quat {
	if r == nil || r.Axis.LenSqr() == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(mgl32.DegToRad(r.Degrees), r.Axis.Normalize())
}

func (s ShapeConfig) Build() (body.Shape, error) {
	switch strings.ToLower(s.Type) {
	case "":
		return nil, nil
	case "sphere":
		return body.NewSphere(s.Radius), nil
	case "cuboid", "box":
		return body.NewCuboid(s.HalfExtents), nil
	default:
		return nil, fmt.Errorf("%q: %w", s.Type, ErrUnknownShape)
	}
}

func (bc BodyConfig) Properties() (body.Properties, error) {
	p := body.DefaultProperties()
	p.Position = bc.Position
	p.Orientation = bc.Rotation.Quat()
	p.LinearVelocity = bc.LinearVelocity
	p.AngularVelocity = bc.AngularVelocity
	p.Force = bc.Force
	p.Torque = bc.Torque
	if bc.Mass > 0 {
		p.Mass = bc.Mass
	}
	p.Static = bc.Static
	p.AtRest = bc.AtRest
	if bc.Elasticity != nil {
		p.Elasticity = *bc.Elasticity
	}
	if bc.Friction != nil {
		p.Friction = *bc.Friction
	}

	shape, err := bc.Shape.Build()
	if err != nil {
		return body.Properties{}, err
	}
	p.Shape = shape
	return p, nil
}

// Build adds the scene to e. Every invalid entry is reported; valid ones are
// still added.
func (s *Scene) Build(e *engine.Engine) (map[string]body.Handle, error) {
	handles := make(map[string]body.Handle, len(s.Bodies))
	var errs []error

	for i, bc := range s.Bodies {
		name := bc.Name
		if name == "" {
			name = fmt.Sprintf("body%d", i)
		}
		if _, dup := handles[name]; dup {
			errs = append(errs, fmt.Errorf("body %q: %w", name, ErrDuplicateBody))
			continue
		}
		p, err := bc.Properties()
		if err != nil {
			errs = append(errs, fmt.Errorf("body %q: %w", name, err))
			continue
		}
		h, err := e.AddBody(body.New(p))
		if err != nil {
			errs = append(errs, fmt.Errorf("body %q: %w", name, err))
			continue
		}
		handles[name] = h
	}

	for i, cc := range s.Constraints {
		c, err := cc.build(e.Bodies(), handles)
		if err == nil {
			err = e.AddConstraint(c)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("constraint %d (%s): %w", i, cc.Type, err))
		}
	}

	return handles, errors.Join(errs...)
}

func (cc ConstraintConfig) build(bodies *body.Set, handles map[string]body.Handle) (constraint.Constraint, error) {
	lookup := func(name string) (body.Handle, error) {
		h, ok := handles[name]
		if !ok {
			return body.NilHandle, fmt.Errorf("%q: %w", name, ErrUnknownBody)
		}
		return h, nil
	}

	a, err := lookup(cc.A)
	if err != nil {
		return nil, err
	}

	kind := constraint.Kind(strings.ToLower(cc.Type))
	if kind == constraint.KindAxis {
		axes, err := constraint.ParseAxes(cc.Axes)
		if err != nil {
			return nil, err
		}
		return constraint.NewAxis(bodies, a, axes)
	}
	if kind != constraint.KindDistance && kind != constraint.KindSpring {
		return nil, fmt.Errorf("%q: %w", cc.Type, ErrUnknownConstraint)
	}

	b, err := lookup(cc.B)
	if err != nil {
		return nil, err
	}
	objA, _ := bodies.Get(a)
	objB, _ := bodies.Get(b)
	onA, onB := objA.Position(), objB.Position()
	if cc.AnchorA != nil {
		onA = *cc.AnchorA
	}
	if cc.AnchorB != nil {
		onB = *cc.AnchorB
	}

	if kind == constraint.KindDistance {
		return constraint.NewDistance(bodies, a, b, onA, onB)
	}

	k, damping := constraint.DefaultSpringConstant, constraint.DefaultDampingFactor
	if cc.Spring != nil {
		k = *cc.Spring
	}
	if cc.Damping != nil {
		damping = *cc.Damping
	}
	return constraint.NewSpring(bodies, a, b, onA, onB, k, damping)
}
