// Package app assembles the notifications service. The Notifier receives
// engine events, persists one inbox row per recipient, and settles feed
// delivery through the websocket hub. The Directory answers the hub's
// membership and inbox questions over the same collaborators.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/platform/id"
	"github.com/louisbranch/warroom/internal/services/notifications/hub"
	"github.com/louisbranch/warroom/internal/services/notifications/render"
	"github.com/louisbranch/warroom/internal/services/notifications/storage"
)

// Recipients is the audience of one game, resolved from its active seats.
type Recipients struct {
	GameName      string
	HostUserIDs   []string
	MemberUserIDs []string
}

// Roster resolves the audience for one game's notifications.
type Roster interface {
	GameRecipients(ctx context.Context, gameID string) (Recipients, error)
}

// Feed pushes pre-rendered copy to live feed subscribers.
type Feed interface {
	Publish(gameID string, userIDs []string, event hub.FeedEvent) int
}

// Config carries the notifier collaborators. Feed may be nil for processes
// without a live feed; rows then settle as skipped.
type Config struct {
	Store  storage.Store
	Roster Roster
	Feed   Feed
	Clock  func() time.Time
	NewID  func() (string, error)
}

// Notifier turns engine events into per-recipient inbox rows and feed pushes.
type Notifier struct {
	store  storage.Store
	roster Roster
	feed   Feed
	clock  func() time.Time
	newID  func() (string, error)
}

// NewNotifier wires a notifier from its collaborators.
func NewNotifier(cfg Config) (*Notifier, error) {
	if cfg.Store == nil {
		return nil, errors.New("notification store is required")
	}
	if cfg.Roster == nil {
		return nil, errors.New("game roster is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = id.NewID
	}
	return &Notifier{
		store:  cfg.Store,
		roster: cfg.Roster,
		feed:   cfg.Feed,
		clock:  clock,
		newID:  newID,
	}, nil
}

// Notify stores one inbox row per routed recipient and pushes the rendered
// copy to live subscribers. Recipient failures do not stop the fan-out; the
// first failure is returned after all recipients were attempted.
func (n *Notifier) Notify(ctx context.Context, kind, gameID string, payload map[string]string) error {
	kind = strings.ToLower(strings.TrimSpace(kind))
	gameID = strings.TrimSpace(gameID)
	if kind == "" {
		return errors.New("notification kind is required")
	}
	if gameID == "" {
		return errors.New("game id is required")
	}

	recipients, err := n.roster.GameRecipients(ctx, gameID)
	if err != nil {
		return fmt.Errorf("resolve recipients for game %s: %w", gameID, err)
	}

	route := routeFor(kind)
	targets := route.audience(recipients)
	if len(targets) == 0 {
		return nil
	}

	payloadJSON, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode payload for kind %s: %w", kind, err)
	}
	dedupeKey := route.dedupeKey(gameID, payload)
	copies := renderCopies(kind, payloadJSON)

	var firstErr error
	for _, userID := range targets {
		stored, duplicate, err := n.persist(ctx, userID, gameID, kind, payloadJSON, dedupeKey)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("store notification for %s: %w", userID, err)
			}
			continue
		}
		if duplicate {
			continue
		}
		n.push(ctx, stored, copies)
	}
	return firstErr
}

// persist writes one inbox row, collapsing onto an existing row when the
// dedupe key already holds for the recipient.
func (n *Notifier) persist(ctx context.Context, userID, gameID, kind, payloadJSON, dedupeKey string) (storage.Notification, bool, error) {
	if dedupeKey != "" {
		existing, err := n.store.GetNotificationByDedupeKey(ctx, userID, dedupeKey)
		if err == nil {
			return existing, true, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return storage.Notification{}, false, err
		}
	}

	notificationID, err := n.newID()
	if err != nil {
		return storage.Notification{}, false, err
	}
	now := n.clock().UTC()
	notification := storage.Notification{
		ID:              notificationID,
		RecipientUserID: userID,
		GameID:          gameID,
		Kind:            kind,
		PayloadJSON:     payloadJSON,
		DedupeKey:       dedupeKey,
		FeedStatus:      storage.FeedStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := n.store.PutNotification(ctx, notification); err != nil {
		if dedupeKey != "" && errors.Is(err, storage.ErrConflict) {
			existing, lookupErr := n.store.GetNotificationByDedupeKey(ctx, userID, dedupeKey)
			if lookupErr == nil {
				return existing, true, nil
			}
			if !errors.Is(lookupErr, storage.ErrNotFound) {
				return storage.Notification{}, false, lookupErr
			}
		}
		return storage.Notification{}, false, err
	}
	return notification, false, nil
}

// push settles feed delivery for one stored row. Settlement failures are
// logged; the row stays readable from the inbox either way.
func (n *Notifier) push(ctx context.Context, notification storage.Notification, copies map[string]hub.Copy) {
	status := storage.FeedStatusSkipped
	if n.feed != nil {
		delivered := n.feed.Publish(notification.GameID, []string{notification.RecipientUserID}, hub.FeedEvent{
			NotificationID: notification.ID,
			GameID:         notification.GameID,
			Kind:           notification.Kind,
			CreatedAt:      notification.CreatedAt,
			Copy:           copies,
		})
		if delivered > 0 {
			status = storage.FeedStatusDelivered
		}
	}
	if err := n.store.MarkFeedResult(ctx, notification.ID, status, n.clock().UTC()); err != nil {
		log.Printf("notifications: feed settlement failed notification=%q: %v", notification.ID, err)
	}
}

func encodePayload(payload map[string]string) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func renderCopies(kind, payloadJSON string) map[string]hub.Copy {
	locales := render.SupportedLocales()
	copies := make(map[string]hub.Copy, len(locales))
	for _, locale := range locales {
		out := render.Render(render.PrinterFor(locale), render.Input{Kind: kind, PayloadJSON: payloadJSON})
		copies[locale] = hub.Copy{Title: out.Title, Body: out.Body}
	}
	return copies
}
