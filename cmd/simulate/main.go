package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/zeusync/impulse/internal/core/observability/log"
)

func main() {
	var (
		steps    = flag.Int("steps", 0, "steps per scene, overriding the scene file")
		serve    = flag.String("serve", "", "stream the first scene live on this address")
		parallel = flag.Int("parallel", runtime.GOMAXPROCS(0), "scenes simulated at once in batch mode")
		level    = flag.String("log", "info", "log level")
	)
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scene.yaml [scene.json ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.New(log.ParseLevel(*level))
	defer func() { _ = logger.Sync() }()

	var err error
	if *serve != "" {
		err = live(ctx, flag.Arg(0), *serve, *level, logger)
	} else {
		err = batch(ctx, flag.Args(), *steps, *parallel, logger)
	}
	if err != nil {
		logger.Error("Simulation failed", log.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
