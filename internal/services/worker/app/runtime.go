package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	gamesqlite "github.com/louisbranch/warroom/internal/services/game/storage/sqlite"
	notifapp "github.com/louisbranch/warroom/internal/services/notifications/app"
	notifsqlite "github.com/louisbranch/warroom/internal/services/notifications/storage/sqlite"
	"github.com/louisbranch/warroom/internal/services/shared/roster"
	workersqlite "github.com/louisbranch/warroom/internal/services/worker/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls worker startup, dependencies, and sweep behavior.
type RuntimeConfig struct {
	Port                int
	DBPath              string
	GameDBPath          string
	NotificationsDBPath string
	SweeperName         string
	PollInterval        time.Duration
}

const (
	defaultWorkerPort      = 8089
	defaultWorkerDB        = "data/worker.db"
	defaultGameDB          = "data/game.db"
	defaultNotificationsDB = "data/notifications.db"
)

// Run starts the worker runtime: it opens the game, notifications, and sweep
// journal stores, builds an engine whose notifier has no live feed, and runs
// the sweeper loop until the context ends. A gRPC health endpoint serves
// while the loop runs.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultWorkerPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultWorkerDB
	}
	if strings.TrimSpace(cfg.GameDBPath) == "" {
		cfg.GameDBPath = defaultGameDB
	}
	if strings.TrimSpace(cfg.NotificationsDBPath) == "" {
		cfg.NotificationsDBPath = defaultNotificationsDB
	}

	for _, path := range []string{cfg.DBPath, cfg.GameDBPath, cfg.NotificationsDBPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir for %s: %w", path, err)
			}
		}
	}

	journal, err := workersqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open worker sqlite store: %w", err)
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			log.Printf("close worker sqlite store: %v", closeErr)
		}
	}()

	gameStore, err := gamesqlite.Open(cfg.GameDBPath)
	if err != nil {
		return fmt.Errorf("open game sqlite store: %w", err)
	}
	defer func() {
		if closeErr := gameStore.Close(); closeErr != nil {
			log.Printf("close game sqlite store: %v", closeErr)
		}
	}()

	notifStore, err := notifsqlite.Open(cfg.NotificationsDBPath)
	if err != nil {
		return fmt.Errorf("open notifications sqlite store: %w", err)
	}
	defer func() {
		if closeErr := notifStore.Close(); closeErr != nil {
			log.Printf("close notifications sqlite store: %v", closeErr)
		}
	}()

	// The worker has no websocket hub, so the notifier runs without a feed.
	// Inbox rows still land; subscribers pick them up from the game process.
	notifier, err := notifapp.NewNotifier(notifapp.Config{
		Store:  notifStore,
		Roster: roster.New(gameStore),
	})
	if err != nil {
		return fmt.Errorf("build notifier: %w", err)
	}

	engine, err := gameengine.New(gameengine.Config{
		Store:    gameStore,
		Notifier: notifier,
	})
	if err != nil {
		return fmt.Errorf("build game engine: %w", err)
	}

	sweeper, err := NewSweeper(SweeperConfig{
		Engine:       engine,
		Journal:      journal,
		Name:         cfg.SweeperName,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("build sweeper: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on worker port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("worker.sweeper", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer sweeper.Stop()

	log.Printf("worker server listening at %v", listener.Addr())
	<-ctx.Done()
	return nil
}
