package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/impulse/internal/config"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/engine"
	"github.com/zeusync/impulse/pkg/concurrent"
)

// summary is the outcome of one batch scene.
type summary struct {
	File  string
	Scene string
	Steps uint64
	Time  float64
	Hash  uint64
	Stats engine.Stats
}

// checkEvery is how many steps run between context checks.
const checkEvery = 64

func runScene(ctx context.Context, path string, steps int, logger log.Log) (summary, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return summary{}, err
	}
	if steps > 0 {
		cfg.Scene.Steps = steps
	}

	sceneLogger := logger.With(log.String("file", path), log.String("scene", cfg.Scene.Name))
	e, _, err := cfg.NewEngine(engine.WithLogger(sceneLogger))
	if err != nil {
		return summary{}, fmt.Errorf("%s: %w", path, err)
	}

	dt := cfg.Engine.Timestep
	for i := 0; i < cfg.Scene.Steps; i++ {
		if i%checkEvery == 0 {
			if err = ctx.Err(); err != nil {
				return summary{}, err
			}
		}
		e.Step(dt)
	}

	return summary{
		File:  path,
		Scene: cfg.Scene.Name,
		Steps: e.StepCount(),
		Time:  e.Time(),
		Hash:  e.StateHash(),
		Stats: e.Stats(),
	}, nil
}

func batch(ctx context.Context, files []string, steps, parallel int, logger log.Log) error {
	results := concurrent.Collect(ctx, files, parallel, func(ctx context.Context, path string) (summary, error) {
		return runScene(ctx, path, steps, logger)
	})

	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", files[i], r.Err))
			continue
		}
		s := r.Value
		logger.Info("Scene finished",
			log.String("file", s.File),
			log.String("scene", s.Scene),
			log.Uint64("steps", s.Steps),
			log.Float64("time", s.Time),
			log.String("hash", fmt.Sprintf("%016x", s.Hash)),
			log.Int("bodies", s.Stats.Bodies),
			log.Int("awake", s.Stats.Awake),
			log.Int("pairs", s.Stats.Pairs),
			log.Uint64("pruned", s.Stats.Pruned))
	}
	return errors.Join(errs...)
}
