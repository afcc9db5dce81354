package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pondwatch"
)

type NotificationSQLite struct {
	db *sql.DB
}

func NewNotificationSQLite(db *sql.DB) *NotificationSQLite { return &NotificationSQLite{db: db} }

var _ NotificationRepo = (*NotificationSQLite)(nil)

const (
	// INSERT OR IGNORE makes Create idempotent on id: re-creating an
	// existing record is a no-op, not a conflict.
	insertNotificationSQL = `
		INSERT OR IGNORE INTO notifications (id, message, type, timestamp, created_at, expiry, is_read, condition)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	// created_at > 0 filters malformed rows; one bad record must never
	// blank the whole list.
	selectNotificationsSQL = `
		SELECT id, message, type, timestamp, created_at, expiry, is_read, condition
		FROM notifications
		WHERE created_at > 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	markReadSQL    = `UPDATE notifications SET is_read = 1 WHERE id = ?`
	markAllReadSQL = `UPDATE notifications SET is_read = 1 WHERE is_read = 0`

	deleteNotificationSQL     = `DELETE FROM notifications WHERE id = ?`
	deleteAllNotificationsSQL = `DELETE FROM notifications`
	countNotificationsSQL     = `SELECT COUNT(*) FROM notifications`
	deleteExpiredSQL          = `DELETE FROM notifications WHERE expiry < ?`

	// Oldest-first eviction for the count cap.
	deleteOldestSQL = `
		DELETE FROM notifications WHERE id IN (
			SELECT id FROM notifications ORDER BY created_at ASC, id ASC LIMIT ?
		)
	`
)

func (r *NotificationSQLite) Create(ctx context.Context, rec pondwatch.AlertRecord) error {
	_, err := r.db.ExecContext(ctx, insertNotificationSQL,
		rec.ID,
		rec.Message,
		rec.Type,
		rec.Timestamp,
		rec.CreatedAt,
		rec.Expiry,
		rec.IsRead,
		string(rec.Condition),
	)
	if err != nil {
		return fmt.Errorf("insert notification %q: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit records, newest first by created_at.
func (r *NotificationSQLite) List(ctx context.Context, limit int) ([]pondwatch.AlertRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectNotificationsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]pondwatch.AlertRecord, 0, 64)
	for rows.Next() {
		var rec pondwatch.AlertRecord
		var cond string
		if err := rows.Scan(
			&rec.ID,
			&rec.Message,
			&rec.Type,
			&rec.Timestamp,
			&rec.CreatedAt,
			&rec.Expiry,
			&rec.IsRead,
			&cond,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w: %w", pondwatch.ErrMalformedRecord, err)
		}
		rec.Condition = pondwatch.Condition(cond)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips is_read to true. There is no reverse operation; read
// state is monotonic.
func (r *NotificationSQLite) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, markReadSQL, id)
	return err
}

func (r *NotificationSQLite) MarkAllRead(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, markAllReadSQL)
	return err
}

func (r *NotificationSQLite) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteNotificationSQL, id)
	return err
}

func (r *NotificationSQLite) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, deleteAllNotificationsSQL)
	return err
}

func (r *NotificationSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countNotificationsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

// DeleteExpired removes every record whose expiry is before nowMilli and
// reports how many rows were deleted.
func (r *NotificationSQLite) DeleteExpired(ctx context.Context, nowMilli int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredSQL, nowMilli)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}
	return res.RowsAffected()
}

// DeleteOldest removes the n oldest records by created_at.
func (r *NotificationSQLite) DeleteOldest(ctx context.Context, n int) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, deleteOldestSQL, n)
	if err != nil {
		return 0, fmt.Errorf("delete oldest notifications: %w", err)
	}
	return res.RowsAffected()
}
