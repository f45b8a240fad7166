package mcp

import (
	"context"
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/game.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/game.db")
	}
	if cfg.UserID != "" {
		t.Fatalf("user id = %q, want empty", cfg.UserID)
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db-path", "tmp/game.db", "-user", "agent-01"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "tmp/game.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "tmp/game.db")
	}
	if cfg.UserID != "agent-01" {
		t.Fatalf("user id = %q, want %q", cfg.UserID, "agent-01")
	}
}

func TestRunRequiresUserID(t *testing.T) {
	err := Run(context.Background(), Config{DBPath: "data/game.db"})
	if err == nil {
		t.Fatal("Run() without user id = nil error, want error")
	}
}
