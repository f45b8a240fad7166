// Package sqlite implements the notifications store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/warroom/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/warroom/internal/services/notifications/storage"
	"github.com/louisbranch/warroom/internal/services/notifications/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
)

// SQLite extended result codes for uniqueness failures.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// Store provides SQLite-backed persistence for the notifications inbox.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a notifications SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness failure. The
// typed driver code is checked first; the message fallback covers wrapped
// errors that lose the extended code.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr != nil {
		code := sqliteErr.Code()
		if code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PutNotification inserts one inbox row. Dedupe key collisions surface as
// storage.ErrConflict.
func (s *Store) PutNotification(ctx context.Context, n storage.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized, err := normalizeNotification(n)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO notifications (
	id, recipient_user_id, game_id, kind, payload_json, dedupe_key,
	feed_status, created_at, updated_at, feed_at, read_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		normalized.ID,
		normalized.RecipientUserID,
		normalized.GameID,
		normalized.Kind,
		normalized.PayloadJSON,
		normalized.DedupeKey,
		string(normalized.FeedStatus),
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
		nullMillis(normalized.FeedAt),
		nullMillis(normalized.ReadAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// GetNotificationByDedupeKey loads one recipient row by dedupe key.
func (s *Store) GetNotificationByDedupeKey(ctx context.Context, recipientUserID, dedupeKey string) (storage.Notification, error) {
	if err := ctx.Err(); err != nil {
		return storage.Notification{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Notification{}, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	dedupeKey = strings.TrimSpace(dedupeKey)
	if recipientUserID == "" {
		return storage.Notification{}, fmt.Errorf("recipient user id is required")
	}
	if dedupeKey == "" {
		return storage.Notification{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, selectNotification+`
WHERE recipient_user_id = ? AND dedupe_key = ?
`, recipientUserID, dedupeKey)
	n, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Notification{}, storage.ErrNotFound
		}
		return storage.Notification{}, fmt.Errorf("get notification by dedupe key: %w", err)
	}
	return n, nil
}

// ListNotificationsByRecipient pages one recipient inbox newest first. The
// page token is the last row ID of the previous page; an unknown token
// returns an empty page.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, recipientUserID string, pageSize int, pageToken string) (storage.Page, error) {
	if err := ctx.Err(); err != nil {
		return storage.Page{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Page{}, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	pageToken = strings.TrimSpace(pageToken)
	if recipientUserID == "" {
		return storage.Page{}, fmt.Errorf("recipient user id is required")
	}
	if pageSize <= 0 {
		return storage.Page{}, fmt.Errorf("page size must be greater than zero")
	}

	limit := pageSize + 1
	if pageToken == "" {
		rows, err := s.sqlDB.QueryContext(ctx, selectNotification+`
WHERE recipient_user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, limit)
		if err != nil {
			return storage.Page{}, fmt.Errorf("list notifications: %w", err)
		}
		defer rows.Close()
		return collectPage(rows, pageSize)
	}

	tokenCreatedAt, err := s.notificationCreatedAtByID(ctx, recipientUserID, pageToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Page{}, nil
		}
		return storage.Page{}, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectNotification+`
WHERE recipient_user_id = ?
  AND (created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?
`, recipientUserID, toMillis(tokenCreatedAt), toMillis(tokenCreatedAt), pageToken, limit)
	if err != nil {
		return storage.Page{}, fmt.Errorf("list notifications with token: %w", err)
	}
	defer rows.Close()
	return collectPage(rows, pageSize)
}

// CountUnreadByRecipient counts inbox rows with no read acknowledgement.
func (s *Store) CountUnreadByRecipient(ctx context.Context, recipientUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	if recipientUserID == "" {
		return 0, fmt.Errorf("recipient user id is required")
	}

	var unread int
	if err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1) FROM notifications
WHERE recipient_user_id = ? AND read_at IS NULL
`, recipientUserID).Scan(&unread); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return unread, nil
}

// MarkNotificationRead stamps ReadAt on one recipient row.
func (s *Store) MarkNotificationRead(ctx context.Context, recipientUserID, notificationID string, readAt time.Time) (storage.Notification, error) {
	if err := ctx.Err(); err != nil {
		return storage.Notification{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Notification{}, err
	}
	recipientUserID = strings.TrimSpace(recipientUserID)
	notificationID = strings.TrimSpace(notificationID)
	if recipientUserID == "" {
		return storage.Notification{}, fmt.Errorf("recipient user id is required")
	}
	if notificationID == "" {
		return storage.Notification{}, fmt.Errorf("notification id is required")
	}
	if readAt.IsZero() {
		return storage.Notification{}, fmt.Errorf("read at is required")
	}

	now := readAt.UTC()
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET read_at = ?, updated_at = ?
WHERE recipient_user_id = ? AND id = ?
`, toMillis(now), toMillis(now), recipientUserID, notificationID)
	if err != nil {
		return storage.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Notification{}, fmt.Errorf("mark notification read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.Notification{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, selectNotification+`
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	n, err := scanNotification(row.Scan)
	if err != nil {
		return storage.Notification{}, fmt.Errorf("reload notification: %w", err)
	}
	return n, nil
}

// MarkFeedResult settles the live-push state for one row.
func (s *Store) MarkFeedResult(ctx context.Context, notificationID string, status storage.FeedStatus, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return fmt.Errorf("notification id is required")
	}
	switch status {
	case storage.FeedStatusDelivered, storage.FeedStatusSkipped:
	default:
		return fmt.Errorf("feed status %q is not a settlement", status)
	}
	if at.IsZero() {
		return fmt.Errorf("feed settlement time is required")
	}

	now := at.UTC()
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE notifications
SET feed_status = ?, feed_at = ?, updated_at = ?
WHERE id = ?
`, string(status), toMillis(now), toMillis(now), notificationID)
	if err != nil {
		return fmt.Errorf("mark feed result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark feed result rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const selectNotification = `
SELECT id, recipient_user_id, game_id, kind, payload_json, dedupe_key,
	feed_status, created_at, updated_at, feed_at, read_at
FROM notifications
`

func (s *Store) notificationCreatedAtByID(ctx context.Context, recipientUserID, notificationID string) (time.Time, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT created_at FROM notifications
WHERE recipient_user_id = ? AND id = ?
`, recipientUserID, notificationID)
	var createdAtMillis int64
	if err := row.Scan(&createdAtMillis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("lookup notification cursor: %w", err)
	}
	return fromMillis(createdAtMillis), nil
}

type scanner func(dest ...any) error

func scanNotification(scan scanner) (storage.Notification, error) {
	var (
		n         storage.Notification
		status    string
		createdAt int64
		updatedAt int64
		feedAt    sql.NullInt64
		readAt    sql.NullInt64
	)
	if err := scan(
		&n.ID,
		&n.RecipientUserID,
		&n.GameID,
		&n.Kind,
		&n.PayloadJSON,
		&n.DedupeKey,
		&status,
		&createdAt,
		&updatedAt,
		&feedAt,
		&readAt,
	); err != nil {
		return storage.Notification{}, err
	}
	n.FeedStatus = storage.FeedStatus(status)
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	if feedAt.Valid {
		at := fromMillis(feedAt.Int64)
		n.FeedAt = &at
	}
	if readAt.Valid {
		at := fromMillis(readAt.Int64)
		n.ReadAt = &at
	}
	return n, nil
}

func collectPage(rows *sql.Rows, pageSize int) (storage.Page, error) {
	page := storage.Page{Notifications: make([]storage.Notification, 0, pageSize)}
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return storage.Page{}, fmt.Errorf("scan notification row: %w", err)
		}
		page.Notifications = append(page.Notifications, n)
	}
	if err := rows.Err(); err != nil {
		return storage.Page{}, fmt.Errorf("iterate notification rows: %w", err)
	}
	if len(page.Notifications) > pageSize {
		page.Notifications = page.Notifications[:pageSize]
		page.NextPageToken = page.Notifications[pageSize-1].ID
	}
	return page, nil
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil || value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func normalizeNotification(n storage.Notification) (storage.Notification, error) {
	n.ID = strings.TrimSpace(n.ID)
	n.RecipientUserID = strings.TrimSpace(n.RecipientUserID)
	n.GameID = strings.TrimSpace(n.GameID)
	n.Kind = strings.TrimSpace(n.Kind)
	n.DedupeKey = strings.TrimSpace(n.DedupeKey)
	n.PayloadJSON = strings.TrimSpace(n.PayloadJSON)
	if n.PayloadJSON == "" {
		n.PayloadJSON = "{}"
	}
	if n.FeedStatus == "" {
		n.FeedStatus = storage.FeedStatusPending
	}
	if n.ID == "" {
		return storage.Notification{}, fmt.Errorf("notification id is required")
	}
	if n.RecipientUserID == "" {
		return storage.Notification{}, fmt.Errorf("recipient user id is required")
	}
	if n.GameID == "" {
		return storage.Notification{}, fmt.Errorf("game id is required")
	}
	if n.Kind == "" {
		return storage.Notification{}, fmt.Errorf("notification kind is required")
	}
	if n.CreatedAt.IsZero() {
		return storage.Notification{}, fmt.Errorf("created_at is required")
	}
	if n.UpdatedAt.IsZero() {
		return storage.Notification{}, fmt.Errorf("updated_at is required")
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	if n.FeedAt != nil {
		at := n.FeedAt.UTC()
		n.FeedAt = &at
	}
	if n.ReadAt != nil {
		at := n.ReadAt.UTC()
		n.ReadAt = &at
	}
	return n, nil
}

var _ storage.Store = (*Store)(nil)
