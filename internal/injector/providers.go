package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/impulse/internal/config"
	"github.com/zeusync/impulse/internal/core/events/bus"
	"github.com/zeusync/impulse/internal/core/observability/log"
	"github.com/zeusync/impulse/internal/core/physics/body"
	"github.com/zeusync/impulse/internal/core/physics/engine"
	"github.com/zeusync/impulse/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideWorld,
	ProvideStreamConfig,
	server.NewStreamServer,
	wire.Struct(new(Simulation), "*"),
)

// World is an engine populated from the config scene.
type World struct {
	Engine *engine.Engine
	Bodies map[string]body.Handle
}

// Simulation is everything a run needs, wired from one config.
type Simulation struct {
	Config *config.Config
	Logger log.Log
	Events bus.EventBus
	World  *World
	Stream *server.StreamServer
}

func ProvideLogger(cfg *config.Config) log.Log {
	return log.New(log.ParseLevel(cfg.Log.Level))
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideWorld(cfg *config.Config, logger log.Log, events bus.EventBus) (*World, error) {
	e, handles, err := cfg.NewEngine(engine.WithLogger(logger), engine.WithEventBus(events))
	if err != nil {
		return nil, err
	}
	return &World{Engine: e, Bodies: handles}, nil
}

func ProvideStreamConfig(cfg *config.Config) server.Config {
	sc := server.DefaultConfig()
	if cfg.Server.Addr != "" {
		sc.ListenAddr = cfg.Server.Addr
	}
	return sc
}
