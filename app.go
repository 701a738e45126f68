package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fakhrymubarak/moonshine/internal/config"
	"github.com/fakhrymubarak/moonshine/internal/handler"
	"github.com/fakhrymubarak/moonshine/internal/middleware"
	"github.com/fakhrymubarak/moonshine/internal/redis"
	"github.com/fakhrymubarak/moonshine/internal/repository"
	"github.com/fakhrymubarak/moonshine/internal/service"
	"github.com/fakhrymubarak/moonshine/internal/view"
)

type app struct {
	loop    *view.Loop
	screen  *view.Screen
	store   repository.SnapshotStore
	limiter *middleware.RateLimiter
	server  *http.Server
}

// newSnapshotStore uses Redis when redis.addr is set and reachable, memory otherwise.
func newSnapshotStore(ctx context.Context) repository.SnapshotStore {
	log := config.GetLogger()
	if !redis.Enabled() {
		return repository.NewMemorySnapshotStore()
	}
	if err := redis.Ping(ctx, 2*time.Second); err != nil {
		log.Warnw("Redis unreachable, keeping snapshot in memory", "addr", config.GetRedisAddr(), "error", err)
		return repository.NewMemorySnapshotStore()
	}
	lat, lon := config.GetLocation()
	log.Infow("Sharing snapshot through Redis", "addr", config.GetRedisAddr())
	return repository.NewRedisSnapshotStore(redis.GetClient(), lat, lon)
}

func newApp(ctx context.Context, addr string, out io.Writer, svc service.ForecastServiceInterface, store repository.SnapshotStore) *app {
	loop := view.NewLoop()
	screen := view.NewScreen(loop, out, svc, store, config.GetForecastUnits())
	limiter := middleware.NewRateLimiter()
	weatherHandler := handler.NewWeatherHandler(ctx, store, screen)

	return &app{
		loop:    loop,
		screen:  screen,
		store:   store,
		limiter: limiter,
		server: &http.Server{
			Addr:              addr,
			Handler:           weatherHandler.Routes(limiter.Middleware),
			ReadHeaderTimeout: config.GetServerTimeout("read_header_timeout"),
			WriteTimeout:      config.GetServerTimeout("write_timeout"),
		},
	}
}

// run shows the screen, performs the initial fetch and then handles terminal
// commands until ctx is done or the user quits.
func (a *app) run(ctx context.Context, in io.Reader) error {
	log := config.GetLogger()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.loop.Run(ctx)
	a.limiter.StartCleanup(ctx)

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("Weather API server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	_ = a.screen.Refresh(ctx)

	commands := readCommands(in)
	var runErr error
events:
	for {
		select {
		case <-ctx.Done():
			break events
		case runErr = <-serverErr:
			break events
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			switch cmd {
			case "", "r":
				_ = a.screen.Refresh(ctx)
			case "ok":
				a.screen.DismissDialog()
			case "q":
				break events
			default:
				log.Debugw("Unknown command", "command", cmd)
			}
		}
	}

	a.shutdown()
	return runErr
}

func (a *app) shutdown() {
	log := config.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
	}
	if err := a.screen.Close(ctx); err != nil {
		log.Warnw("Could not clear snapshot", "error", err)
	}
	a.loop.Stop()
	log.Infow("Shutdown complete")
}

func readCommands(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			ch <- strings.ToLower(strings.TrimSpace(scanner.Text()))
		}
	}()
	return ch
}
