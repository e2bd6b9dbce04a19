package main

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/impulse/internal/config"
	"github.com/zeusync/impulse/internal/core/events/bus"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/engine"
	"github.com/zeusync/impulse/internal/injector"
	"github.com/zeusync/impulse/internal/server"
)

// live runs the scene in real time and streams it until ctx is cancelled.
func live(ctx context.Context, path, addr, level string, logger log.Log) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Server.Addr = addr
	cfg.Log.Level = level

	sim, err := injector.InitializeSimulation(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err = watchEvents(sim.Events, sim.Logger); err != nil {
		return err
	}

	if err = sim.Stream.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sim.Stream.Stop(stopCtx); err != nil {
			logger.Warn("Stream server shutdown failed", log.Error(err))
		}
	}()

	e := sim.World.Engine
	every := uint64(max(cfg.Server.Every, 1))
	var lastPublished uint64
	publish := func() {
		if err := sim.Stream.Publish(e); err != nil {
			logger.Warn("Snapshot publish failed", log.Error(err))
		}
		lastPublished = e.StepCount()
	}
	publish()

	frame := time.Duration(float64(cfg.Engine.Timestep) * float64(time.Second))
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Simulation stopped",
				log.Uint64("steps", e.StepCount()),
				log.String("hash", fmt.Sprintf("%016x", e.StateHash())))
			return nil

		case cmd := <-sim.Stream.Commands():
			switch cmd.Type {
			case server.CommandPause:
				e.SetPaused(true)
			case server.CommandResume:
				e.SetPaused(false)
				last = time.Now()
			case server.CommandStep:
				if e.IsPaused() {
					e.Step(cfg.Engine.Timestep)
					publish()
				}
			}

		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if e.Update(float32(elapsed.Seconds())) > 0 && e.StepCount()-lastPublished >= every {
				publish()
			}
		}
	}
}

// watchEvents logs engine events at debug level.
func watchEvents(events bus.EventBus, logger log.Log) error {
	handler := func(ev bus.Event) error {
		logger.Debug("Engine event",
			log.String("type", ev.Type()),
			log.String("source", ev.Source()),
			log.Any("data", ev.Data()))
		return nil
	}
	for _, typ := range []string{
		engine.EventBodyRest,
		engine.EventBodyWake,
		engine.EventConstraintPruned,
		engine.EventStepOverrun,
	} {
		if _, err := events.Subscribe(typ, handler); err != nil {
			return err
		}
	}
	return nil
}
