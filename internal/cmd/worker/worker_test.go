package worker

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	t.Setenv("WARROOM_WORKER_PORT", "9099")
	t.Setenv("WARROOM_GAME_DB_PATH", "tmp/game.db")

	cfg, err := ParseConfig(fs, []string{"-sweeper", "sweeper-e2e", "-poll-interval", "30s"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9099 {
		t.Fatalf("port = %d, want 9099", cfg.Port)
	}
	if cfg.GameDBPath != "tmp/game.db" {
		t.Fatalf("game db path = %q, want %q", cfg.GameDBPath, "tmp/game.db")
	}
	if cfg.Sweeper != "sweeper-e2e" {
		t.Fatalf("sweeper = %q, want %q", cfg.Sweeper, "sweeper-e2e")
	}
	if cfg.PollInterval != 30*time.Second {
		t.Fatalf("poll interval = %v, want 30s", cfg.PollInterval)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8089 {
		t.Fatalf("port = %d, want 8089", cfg.Port)
	}
	if cfg.DBPath != "data/worker.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/worker.db")
	}
	if cfg.PollInterval != 300*time.Second {
		t.Fatalf("poll interval = %v, want 300s", cfg.PollInterval)
	}
}
