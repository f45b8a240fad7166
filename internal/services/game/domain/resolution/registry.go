package resolution

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
)

// Registry manages the registered resolution strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy to the registry. Panics if the method id is blank
// or already registered.
func (r *Registry) Register(strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	methodID := strings.TrimSpace(strategy.ID())
	if methodID == "" {
		panic("resolution strategy must define a method id")
	}
	if _, exists := r.strategies[methodID]; exists {
		panic(fmt.Sprintf("resolution strategy %s already registered", methodID))
	}
	r.strategies[methodID] = strategy
}

// Get returns the strategy for the stored method id.
func (r *Registry) Get(methodID string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, ok := r.strategies[methodID]
	if !ok {
		return nil, apperrors.WithMetadata(
			apperrors.CodeResolutionUnknownMethod,
			fmt.Sprintf("resolution method %q is not registered", methodID),
			map[string]string{"Method": methodID},
		)
	}
	return strategy, nil
}

// MustGet returns the strategy for the method id, or panics if not found.
func (r *Registry) MustGet(methodID string) Strategy {
	strategy, err := r.Get(methodID)
	if err != nil {
		panic(err)
	}
	return strategy
}

// List returns the registered method ids in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.strategies))
	for methodID := range r.strategies {
		ids = append(ids, methodID)
	}
	sort.Strings(ids)
	return ids
}

// DefaultRegistry is the process-wide strategy registry. Strategies register
// themselves via init.
var DefaultRegistry = NewRegistry()
