// Package worker parses worker command flags and launches the sweep runtime.
package worker

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/warroom/internal/platform/cmd"
	workerserver "github.com/louisbranch/warroom/internal/services/worker/app"
)

// Config holds worker command configuration.
type Config struct {
	Port                int           `env:"WARROOM_WORKER_PORT" envDefault:"8089"`
	DBPath              string        `env:"WARROOM_WORKER_DB_PATH" envDefault:"data/worker.db"`
	GameDBPath          string        `env:"WARROOM_GAME_DB_PATH" envDefault:"data/game.db"`
	NotificationsDBPath string        `env:"WARROOM_NOTIFICATIONS_DB_PATH" envDefault:"data/notifications.db"`
	Sweeper             string        `env:"WARROOM_WORKER_SWEEPER" envDefault:"timeout-sweeper"`
	PollInterval        time.Duration `env:"WARROOM_WORKER_POLL_INTERVAL" envDefault:"300s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The worker health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The sweep journal SQLite database path")
	fs.StringVar(&cfg.GameDBPath, "game-db-path", cfg.GameDBPath, "The game SQLite database path")
	fs.StringVar(&cfg.NotificationsDBPath, "notifications-db-path", cfg.NotificationsDBPath, "The notifications SQLite database path")
	fs.StringVar(&cfg.Sweeper, "sweeper", cfg.Sweeper, "Sweeper name recorded in the sweep journal")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Timeout sweep poll interval")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the worker runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWorker, func(context.Context) error {
		return workerserver.Run(ctx, workerserver.RuntimeConfig{
			Port:                cfg.Port,
			DBPath:              cfg.DBPath,
			GameDBPath:          cfg.GameDBPath,
			NotificationsDBPath: cfg.NotificationsDBPath,
			SweeperName:         cfg.Sweeper,
			PollInterval:        cfg.PollInterval,
		})
	})
}
