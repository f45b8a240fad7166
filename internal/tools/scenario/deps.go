package scenario

import (
	"github.com/louisbranch/warroom/internal/services/game/storage"
)

// identityProvider mints synthetic user accounts for scenario seats.
type identityProvider interface {
	CreateUser(displayName string) string
}

// runnerDeps bundles injectable dependencies for runner construction.
type runnerDeps struct {
	store      storage.Store
	clock      *clock
	identities identityProvider
}
