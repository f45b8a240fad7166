// Package roster resolves notification audiences from game seats.
package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/louisbranch/warroom/internal/services/game/domain/game"
	"github.com/louisbranch/warroom/internal/services/game/domain/player"
	notifapp "github.com/louisbranch/warroom/internal/services/notifications/app"
)

// GameStore is the slice of game persistence the roster reads.
type GameStore interface {
	GetGame(ctx context.Context, id string) (game.Game, error)
	ListPlayersByGame(ctx context.Context, gameID string) ([]player.Player, error)
}

// Roster answers audience lookups from the game store. NPC seats and players
// who left are not notification recipients.
type Roster struct {
	store GameStore
}

// New wires a roster over the game store.
func New(store GameStore) *Roster {
	return &Roster{store: store}
}

// GameRecipients resolves the game's name and its current human audience.
func (r *Roster) GameRecipients(ctx context.Context, gameID string) (notifapp.Recipients, error) {
	if r == nil || r.store == nil {
		return notifapp.Recipients{}, fmt.Errorf("roster store is not configured")
	}

	g, err := r.store.GetGame(ctx, gameID)
	if err != nil {
		return notifapp.Recipients{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	players, err := r.store.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return notifapp.Recipients{}, fmt.Errorf("list players for game %s: %w", gameID, err)
	}

	recipients := notifapp.Recipients{GameName: g.Name}
	for _, p := range players {
		if p.IsNPC || !p.IsActive || p.UserID == "" {
			continue
		}
		if p.IsHost {
			recipients.HostUserIDs = append(recipients.HostUserIDs, p.UserID)
			continue
		}
		recipients.MemberUserIDs = append(recipients.MemberUserIDs, p.UserID)
	}
	sort.Strings(recipients.HostUserIDs)
	sort.Strings(recipients.MemberUserIDs)
	return recipients, nil
}

var _ notifapp.Roster = (*Roster)(nil)
