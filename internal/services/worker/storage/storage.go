package storage

import (
	"context"
	"time"
)

// Sweep outcomes recorded in the journal.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// SweepRecord is one durable timeout sweep outcome record.
type SweepRecord struct {
	ID                int64
	Sweeper           string
	GamesExamined     int32
	TimeoutsProcessed int32
	Failures          int32
	Outcome           string
	LastError         string
	StartedAt         time.Time
	FinishedAt        time.Time
}

// SweepStore persists timeout sweep records.
type SweepStore interface {
	RecordSweep(ctx context.Context, sweep SweepRecord) error
	ListSweeps(ctx context.Context, limit int) ([]SweepRecord, error)
}
