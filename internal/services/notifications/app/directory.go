package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/louisbranch/warroom/internal/services/notifications/hub"
	"github.com/louisbranch/warroom/internal/services/notifications/render"
	"github.com/louisbranch/warroom/internal/services/notifications/storage"
)

// Directory answers the feed hub's membership and inbox questions. Inbox
// items are rendered for the requested locale at read time.
type Directory struct {
	store  storage.Store
	roster Roster
	clock  func() time.Time
}

// NewDirectory wires a directory over the notification store and game roster.
func NewDirectory(store storage.Store, roster Roster, clock func() time.Time) (*Directory, error) {
	if store == nil {
		return nil, errors.New("notification store is required")
	}
	if roster == nil {
		return nil, errors.New("game roster is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Directory{store: store, roster: roster, clock: clock}, nil
}

// IsGameMember reports whether the user holds an active seat in the game.
func (d *Directory) IsGameMember(ctx context.Context, gameID, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}
	recipients, err := d.roster.GameRecipients(ctx, gameID)
	if err != nil {
		return false, err
	}
	for _, memberID := range recipients.MemberUserIDs {
		if strings.TrimSpace(memberID) == userID {
			return true, nil
		}
	}
	return false, nil
}

// JoinWelcome resolves the context sent back when a peer joins a game feed.
func (d *Directory) JoinWelcome(ctx context.Context, gameID, userID string) (hub.Welcome, error) {
	recipients, err := d.roster.GameRecipients(ctx, gameID)
	if err != nil {
		return hub.Welcome{}, err
	}
	unread, err := d.store.CountUnreadByRecipient(ctx, strings.TrimSpace(userID))
	if err != nil {
		return hub.Welcome{}, err
	}
	return hub.Welcome{GameName: recipients.GameName, UnreadCount: unread}, nil
}

// ListInbox pages the recipient's inbox newest first, rendering each row's
// copy for the requested locale.
func (d *Directory) ListInbox(ctx context.Context, userID, locale string, pageSize int, pageToken string) (hub.InboxPage, error) {
	page, err := d.store.ListNotificationsByRecipient(ctx, strings.TrimSpace(userID), pageSize, pageToken)
	if err != nil {
		return hub.InboxPage{}, err
	}

	printer := render.PrinterFor(locale)
	items := make([]hub.InboxItem, 0, len(page.Notifications))
	for _, notification := range page.Notifications {
		out := render.Render(printer, render.Input{
			Kind:        notification.Kind,
			PayloadJSON: notification.PayloadJSON,
		})
		items = append(items, hub.InboxItem{
			NotificationID: notification.ID,
			GameID:         notification.GameID,
			Kind:           notification.Kind,
			Title:          out.Title,
			Body:           out.Body,
			CreatedAt:      notification.CreatedAt,
			Read:           notification.ReadAt != nil,
		})
	}
	return hub.InboxPage{Items: items, NextPageToken: page.NextPageToken}, nil
}

// MarkRead acknowledges one recipient notification.
func (d *Directory) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := d.store.MarkNotificationRead(ctx, strings.TrimSpace(userID), strings.TrimSpace(notificationID), d.clock().UTC())
	return err
}
