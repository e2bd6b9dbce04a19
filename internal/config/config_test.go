package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/broadphase"
	"github.com/zeusync/impulse/internal/core/physics/constraint"
	"github.com/zeusync/impulse/internal/core/physics/engine"
)

const pendulumYAML = `
log:
  level: debug
engine:
  gravity: [0, -10, 0]
  solver_iterations: 10
  integration: semi_implicit_euler
  debug: [constraints, aabb]
  broadphase:
    kind: octree
    octree_max_objects: 4
scene:
  name: pendulum
  steps: 120
  bodies:
    - name: pivot
      static: true
      shape: {type: sphere, radius: 0.1}
    - name: bob
      position: [1, 0, 0]
      mass: 2
      rotation: {axis: [0, 0, 1], degrees: 90}
      shape: {type: cuboid, half_extents: [0.2, 0.2, 0.2]}
    - name: rail
      position: [0, -2, 0]
  constraints:
    - {type: distance, a: pivot, b: bob}
    - {type: spring, a: bob, b: rail, anchor_b: [0, -1.5, 0], spring: 0.5}
    - {type: axis, a: rail, axes: xz}
`

const pendulumJSON = `{
  "engine": {"integration": "rk2", "broadphase": {"kind": "brute_force"}},
  "scene": {
    "bodies": [
      {"name": "a", "shape": {"type": "sphere", "radius": 0.5}},
      {"name": "b", "position": [2, 0, 0], "shape": {"type": "sphere", "radius": 0.5}}
    ],
    "constraints": [{"type": "distance", "a": "a", "b": "b"}]
  }
}`

func TestLoad(t *testing.T) {
	t.Run("YAML over defaults", func(t *testing.T) {
		c, err := LoadYAML(strings.NewReader(pendulumYAML))
		require.NoError(t, err)

		require.Equal(t, "debug", c.Log.Level)
		require.Equal(t, mgl32.Vec3{0, -10, 0}, c.Engine.Gravity)
		require.Equal(t, engine.DefaultTimestep, c.Engine.Timestep)
		require.Equal(t, engine.DefaultDamping, c.Engine.Damping)
		require.Equal(t, 10, c.Engine.SolverIterations)
		require.Equal(t, "octree", c.Engine.Broadphase.Kind)
		require.Equal(t, 4, c.Engine.Broadphase.OctreeMaxObjects)
		require.Equal(t, broadphase.DefaultOctreeMaxDepth, c.Engine.Broadphase.OctreeMaxDepth)
		require.Equal(t, 120, c.Scene.Steps)
		require.Len(t, c.Scene.Bodies, 3)
		require.Len(t, c.Scene.Constraints, 3)
	})

	t.Run("JSON over defaults", func(t *testing.T) {
		c, err := LoadJSON(strings.NewReader(pendulumJSON))
		require.NoError(t, err)
		require.Equal(t, "rk2", c.Engine.Integration)
		require.Equal(t, engine.DefaultSolverIterations, c.Engine.SolverIterations)
		require.Equal(t, 600, c.Scene.Steps)
	})

	t.Run("Empty YAML is the default", func(t *testing.T) {
		c, err := LoadYAML(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, Default(), c)
	})

	t.Run("Unknown fields are rejected", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("engine:\n  gravty: [0, 1, 0]\n"))
		require.Error(t, err)
		_, err = LoadJSON(strings.NewReader(`{"engine": {"gravty": [0, 1, 0]}}`))
		require.Error(t, err)
	})

	t.Run("By extension", func(t *testing.T) {
		dir := t.TempDir()
		yamlPath := filepath.Join(dir, "scene.yml")
		jsonPath := filepath.Join(dir, "scene.json")
		tomlPath := filepath.Join(dir, "scene.toml")
		require.NoError(t, os.WriteFile(yamlPath, []byte(pendulumYAML), 0o600))
		require.NoError(t, os.WriteFile(jsonPath, []byte(pendulumJSON), 0o600))
		require.NoError(t, os.WriteFile(tomlPath, nil, 0o600))

		c, err := Load(yamlPath)
		require.NoError(t, err)
		require.Equal(t, "pendulum", c.Scene.Name)

		c, err = Load(jsonPath)
		require.NoError(t, err)
		require.Len(t, c.Scene.Bodies, 2)

		_, err = Load(tomlPath)
		require.ErrorIs(t, err, ErrUnknownFormat)

		_, err = Load(filepath.Join(dir, "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSettings(t *testing.T) {
	t.Run("Converts", func(t *testing.T) {
		c, err := LoadYAML(strings.NewReader(pendulumYAML))
		require.NoError(t, err)

		s, err := c.Settings()
		require.NoError(t, err)
		require.Equal(t, engine.SemiImplicitEuler, s.Integration)
		require.Equal(t, engine.DebugConstraints|engine.DebugAABB, s.DebugFlags)
		require.Equal(t, broadphase.KindOctree, s.Broadphase.Kind)
		require.Equal(t, float32(-10), s.Gravity.Y())
	})

	t.Run("Defaults match the engine", func(t *testing.T) {
		s, err := Default().Settings()
		require.NoError(t, err)
		require.Equal(t, engine.DefaultSettings(), s)
	})

	t.Run("Errors are joined", func(t *testing.T) {
		c := Default()
		c.Engine.Integration = "verlet"
		c.Engine.Debug = []string{"normals"}
		c.Engine.Timestep = -1

		_, err := c.Settings()
		require.ErrorIs(t, err, engine.ErrUnknownIntegration)
		require.ErrorIs(t, err, ErrUnknownDebugFlag)
		require.ErrorIs(t, err, engine.ErrInvalidSettings)
	})

	t.Run("Debug flags", func(t *testing.T) {
		f, err := ParseDebugFlags([]string{"ALL"})
		require.NoError(t, err)
		require.Equal(t, engine.DebugAll, f)

		f, err = ParseDebugFlags(nil)
		require.NoError(t, err)
		require.Zero(t, f)
	})
}

func TestBuild(t *testing.T) {
	t.Run("Pendulum scene", func(t *testing.T) {
		c, err := LoadYAML(strings.NewReader(pendulumYAML))
		require.NoError(t, err)

		e, handles, err := c.NewEngine(engine.WithLogger(log.NewNop()))
		require.NoError(t, err)
		require.Len(t, handles, 3)
		require.Equal(t, 3, e.Bodies().Len())

		pivot, _ := e.Body(handles["pivot"])
		require.True(t, pivot.IsStatic())
		require.Equal(t, body.ShapeSphere, pivot.Shape().Type())

		bob, _ := e.Body(handles["bob"])
		require.Equal(t, float32(2), bob.Mass())
		require.Equal(t, body.ShapeCuboid, bob.Shape().Type())
		require.True(t, bob.Orientation().Rotate(mgl32.Vec3{1, 0, 0}).ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5))

		rail, _ := e.Body(handles["rail"])
		require.Nil(t, rail.Shape())

		cs := e.Constraints()
		require.Len(t, cs, 3)
		require.Equal(t, constraint.KindDistance, cs[0].Kind())
		require.Equal(t, []body.Handle{handles["pivot"], handles["bob"]}, cs[0].Bodies())

		spring := cs[1].(*constraint.Spring)
		require.Equal(t, float32(0.5), spring.SpringConstant())
		require.Equal(t, constraint.DefaultDampingFactor, spring.DampingFactor())
		require.InDelta(t, 1.8028, spring.RestDistance(), 1e-4)

		require.Equal(t, constraint.AxesXZ, cs[2].(*constraint.Axis).Axes())

		for _i := 0; _i < c.Scene.Steps; _i++ {
			e.Step(c.Engine.Timestep)
		}
		require.Equal(t, uint64(c.Scene.Steps), e.StepCount())
		require.Zero(t, rail.Position().X())
		require.Zero(t, rail.Position().Z())
		require.Equal(t, pivot.Position(), mgl32.Vec3{})
	})

	t.Run("Invalid entries are all reported", func(t *testing.T) {
		c := Default()
		c.Scene = Scene{
			Bodies: []BodyConfig{
				{Name: "a"},
				{Name: "a"},
				{Name: "b", Shape: ShapeConfig{Type: "cone"}},
				{},
			},
			Constraints: []ConstraintConfig{
				{Type: "distance", A: "a", B: "ghost"},
				{Type: "hinge", A: "a"},
				{Type: "axis", A: "a", Axes: "w"},
				{Type: "spring", A: "a", B: "body3", Spring: ptr(float32(-1))},
				{Type: "distance", A: "a", B: "body3"},
			},
		}

		e, err := engine.New(engine.DefaultSettings())
		require.NoError(t, err)
		handles, err := c.Scene.Build(e)

		require.ErrorIs(t, err, ErrDuplicateBody)
		require.ErrorIs(t, err, ErrUnknownShape)
		require.ErrorIs(t, err, ErrUnknownBody)
		require.ErrorIs(t, err, ErrUnknownConstraint)
		require.ErrorIs(t, err, constraint.ErrUnknownAxes)
		require.ErrorIs(t, err, constraint.ErrNegativeSpring)

		require.Len(t, handles, 2)
		require.Contains(t, handles, "body3")
		require.Len(t, e.Constraints(), 1)
	})
}

func ptr[T any](v T) *T { return &v }
