// Package config loads engine settings and scene descriptions from YAML or
// JSON and builds them into a running engine.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/broadphase"
	"github.com/zeusync/impulse/internal/core/physics/engine"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log    LogConfig    `json:"log" yaml:"log"`
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Server ServerConfig `json:"server" yaml:"server"`
	Scene  Scene        `json:"scene" yaml:"scene"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type EngineConfig struct {
	Gravity               mgl32.Vec3       `json:"gravity" yaml:"gravity"`
	Timestep              float32          `json:"timestep" yaml:"timestep"`
	MaxUpdatesPerFrame    int              `json:"max_updates_per_frame" yaml:"max_updates_per_frame"`
	VariableTimestep      bool             `json:"variable_timestep" yaml:"variable_timestep"`
	Damping               float32          `json:"damping" yaml:"damping"`
	SolverIterations      int              `json:"solver_iterations" yaml:"solver_iterations"`
	Integration           string           `json:"integration" yaml:"integration"`
	RestVelocityThreshold float32          `json:"rest_velocity_threshold" yaml:"rest_velocity_threshold"`
	Paused                bool             `json:"paused" yaml:"paused"`
	Debug                 []string         `json:"debug,omitempty" yaml:"debug,omitempty"`
	Broadphase            BroadphaseConfig `json:"broadphase" yaml:"broadphase"`
}

type BroadphaseConfig struct {
	Kind             string     `json:"kind" yaml:"kind"`
	SweepAxis        mgl32.Vec3 `json:"sweep_axis" yaml:"sweep_axis"`
	OctreeMaxObjects int        `json:"octree_max_objects" yaml:"octree_max_objects"`
	OctreeMaxDepth   int        `json:"octree_max_depth" yaml:"octree_max_depth"`
}

type ServerConfig struct {
	// Addr is the listen address of the debug stream; empty disables it.
	Addr string `json:"addr" yaml:"addr"`
	// Every sends a snapshot every N steps.
	Every int `json:"every" yaml:"every"`
}

// Default mirrors engine.DefaultSettings.
func Default() *Config {
	s := engine.DefaultSettings()
	return &Config{
		Log: LogConfig{Level: "info"},
		Engine: EngineConfig{
			Gravity:               s.Gravity,
			Timestep:              s.Timestep,
			MaxUpdatesPerFrame:    s.MaxUpdatesPerFrame,
			VariableTimestep:      s.VariableTimestep,
			Damping:               s.Damping,
			SolverIterations:      s.SolverIterations,
			Integration:           s.Integration.String(),
			RestVelocityThreshold: s.RestVelocityThreshold,
			Paused:                s.Paused,
			Debug:                 []string{"constraints"},
			Broadphase: BroadphaseConfig{
				Kind:             string(s.Broadphase.Kind),
				SweepAxis:        s.Broadphase.SweepAxis,
				OctreeMaxObjects: s.Broadphase.OctreeMaxObjects,
				OctreeMaxDepth:   s.Broadphase.OctreeMaxDepth,
			},
		},
		Server: ServerConfig{Every: 1},
		Scene:  Scene{Steps: 600},
	}
}

// LoadJSON decodes r over the defaults.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decode json config: %w", err)
	}
	return c, nil
}

// LoadYAML decodes r over the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml config: %w", err)
	}
	return c, nil
}

// Load reads a config file, choosing the decoder from the extension.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	case ".json":
		return LoadJSON(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Settings converts the engine section.
func (c *Config) Settings() (engine.Settings, error) {
	ec := c.Engine
	s := engine.Settings{
		Gravity:               ec.Gravity,
		Timestep:              ec.Timestep,
		MaxUpdatesPerFrame:    ec.MaxUpdatesPerFrame,
		VariableTimestep:      ec.VariableTimestep,
		Damping:               ec.Damping,
		SolverIterations:      ec.SolverIterations,
		RestVelocityThreshold: ec.RestVelocityThreshold,
		Paused:                ec.Paused,
		Broadphase: broadphase.Options{
			Kind:             broadphase.Kind(ec.Broadphase.Kind),
			SweepAxis:        ec.Broadphase.SweepAxis,
			OctreeMaxObjects: ec.Broadphase.OctreeMaxObjects,
			OctreeMaxDepth:   ec.Broadphase.OctreeMaxDepth,
		},
	}

	var errs []error
	integration, err := engine.ParseIntegration(ec.Integration)
	if err != nil {
		errs = append(errs, err)
	}
	s.Integration = integration

	flags, err := ParseDebugFlags(ec.Debug)
	if err != nil {
		errs = append(errs, err)
	}
	s.DebugFlags = flags

	if err = s.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err = errors.Join(errs...); err != nil {
		return engine.Settings{}, err
	}
	return s, nil
}

// NewEngine builds an engine from the engine section and populates it with
// the scene. It returns the body handles by name.
func (c *Config) NewEngine(opts ...engine.Option) (*engine.Engine, map[string]body.Handle, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.New(s, opts...)
	if err != nil {
		return nil, nil, err
	}
	handles, err := c.Scene.Build(e)
	if err != nil {
		return nil, nil, err
	}
	return e, handles, nil
}

var debugFlagNames = map[string]engine.DebugFlags{
	"constraints":     engine.DebugConstraints,
	"aabb":            engine.DebugAABB,
	"linear_velocity": engine.DebugLinearVelocity,
	"broadphase":      engine.DebugBroadphase,
	"all":             engine.DebugAll,
}

func ParseDebugFlags(names []string) (engine.DebugFlags, error) {
	var flags engine.DebugFlags
	for _, name := range names {
		f, ok := debugFlagNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%q: %w", name, ErrUnknownDebugFlag)
		}
		flags |= f
	}
	return flags, nil
}
