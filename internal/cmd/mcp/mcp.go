// Package mcp parses MCP command flags and hosts the agent tool surface over
// an in-process game engine.
package mcp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/louisbranch/warroom/internal/platform/cmd"
	gameengine "github.com/louisbranch/warroom/internal/services/game/engine"
	gamesqlite "github.com/louisbranch/warroom/internal/services/game/storage/sqlite"
	mcpservice "github.com/louisbranch/warroom/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath string `env:"WARROOM_GAME_DB_PATH" envDefault:"data/game.db"`
	UserID string `env:"WARROOM_MCP_USER_ID"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The game SQLite database path")
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "The user id the connected agent plays as")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server on stdio.
func Run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.UserID) == "" {
		return errors.New("agent user id is required (WARROOM_MCP_USER_ID or -user)")
	}
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := gamesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close game store: %v", closeErr)
		}
	}()

	engine, err := gameengine.New(gameengine.Config{Store: store})
	if err != nil {
		return fmt.Errorf("build game engine: %w", err)
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			Engine: engine,
			UserID: cfg.UserID,
		})
	})
}
