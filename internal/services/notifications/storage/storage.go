// Package storage defines the persistence contracts for the notifications
// inbox.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested notification is missing.
	ErrNotFound = errors.New("notification not found")
	// ErrConflict indicates a write collided with a uniqueness constraint.
	ErrConflict = errors.New("notification conflict")
)

// FeedStatus tracks whether the live feed push for a notification landed.
type FeedStatus string

const (
	// FeedStatusPending means the feed push has not been attempted yet.
	FeedStatusPending FeedStatus = "pending"
	// FeedStatusDelivered means at least one feed subscriber received it.
	FeedStatusDelivered FeedStatus = "delivered"
	// FeedStatusSkipped means nobody was listening when it was pushed.
	FeedStatusSkipped FeedStatus = "skipped"
)

// Notification is one recipient inbox row. The inbox copy itself is not
// stored; Kind plus PayloadJSON render to localized copy at read time.
type Notification struct {
	ID              string
	RecipientUserID string
	GameID          string
	Kind            string
	PayloadJSON     string
	// DedupeKey collapses repeat writes for the same stall into one row.
	// Empty means no deduplication.
	DedupeKey  string
	FeedStatus FeedStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// FeedAt is when the feed push settled (delivered or skipped).
	FeedAt *time.Time
	// ReadAt is when the recipient acknowledged the row.
	ReadAt *time.Time
}

// Page is one cursor-paged slice of a recipient inbox, newest first.
type Page struct {
	Notifications []Notification
	NextPageToken string
}

// Store persists recipient inbox state.
type Store interface {
	// PutNotification inserts one inbox row. A dedupe key collision
	// returns ErrConflict.
	PutNotification(ctx context.Context, n Notification) error
	// GetNotificationByDedupeKey loads the recipient row holding a dedupe
	// key, or ErrNotFound.
	GetNotificationByDedupeKey(ctx context.Context, recipientUserID, dedupeKey string) (Notification, error)
	// ListNotificationsByRecipient pages a recipient inbox newest first.
	// The page token is the last notification ID of the previous page.
	ListNotificationsByRecipient(ctx context.Context, recipientUserID string, pageSize int, pageToken string) (Page, error)
	// CountUnreadByRecipient counts rows without a read acknowledgement.
	CountUnreadByRecipient(ctx context.Context, recipientUserID string) (int, error)
	// MarkNotificationRead stamps ReadAt on one recipient row and returns
	// the updated row, or ErrNotFound when the recipient does not hold it.
	MarkNotificationRead(ctx context.Context, recipientUserID, notificationID string, readAt time.Time) (Notification, error)
	// MarkFeedResult settles the feed push state for one row.
	MarkFeedResult(ctx context.Context, notificationID string, status FeedStatus, at time.Time) error
}
