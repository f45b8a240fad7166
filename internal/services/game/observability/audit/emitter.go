package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// Appender is the slice of the audit store the emitter writes through.
type Appender interface {
	AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error
}

// Emitter records durable audit events for game service operations.
type Emitter struct {
	store Appender
	clock func() time.Time
}

// NewEmitter creates a new audit event emitter.
func NewEmitter(store Appender) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the emitter or store is nil.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.CreatedAt.IsZero() {
		if e.clock == nil {
			evt.CreatedAt = time.Now().UTC()
		} else {
			evt.CreatedAt = e.clock().UTC()
		}
	}
	return e.store.AppendAuditEvent(ctx, evt)
}

// Payload marshals event payload fields to JSON. It returns nil when fields is
// empty or cannot be marshaled so that emit paths never fail on payload shape.
func Payload(fields map[string]any) []byte {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return raw
}
