package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/network"
	"github.com/fakhrymubarak/moonshine/internal/repository"
	"github.com/fakhrymubarak/moonshine/internal/service"
)

func main() {
	log := config.GetLogger()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.GetForecastAPIKey() == "" {
		log.Warnw("DARKSKY_API_KEY is not set, every fetch will fail")
	}

	svc := service.NewForecastService(repository.NewForecastRepository(), network.NewChecker())
	a := newApp(ctx, ":"+config.GetServerPort(), os.Stdout, svc, newSnapshotStore(ctx))
	if err := a.run(ctx, os.Stdin); err != nil {
		log.Fatalw("Server stopped", "error", err)
	}
}
