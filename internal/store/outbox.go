package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/petcare/internal/model"
)

const outboxCols = `id, handle, fire_at, payload, status, attempts, last_error, created_at, updated_at`

// OutboxStore holds notifications waiting for their fire time.
type OutboxStore struct {
	db *sql.DB
}

func NewOutboxStore(db *sql.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Create(ctx context.Context, handle string, fireAt time.Time, payload string) (*model.ScheduledNotification, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scheduled_notifications (handle, fire_at, payload, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		handle, fireAt.UTC(), payload, model.OutboxPending, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduled notification: %w", err)
	}
	return s.GetByHandle(ctx, handle)
}

func (s *OutboxStore) GetByHandle(ctx context.Context, handle string) (*model.ScheduledNotification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx,
		`SELECT `+outboxCols+` FROM scheduled_notifications WHERE handle = ?`, handle,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled notification: %w", err)
	}
	return n, nil
}

// Cancel marks a pending entry cancelled. Unknown or finished handles are ignored.
func (s *OutboxStore) Cancel(ctx context.Context, handle string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_notifications SET status = ?, updated_at = ? WHERE handle = ? AND status = ?`,
		model.OutboxCancelled, time.Now().UTC(), handle, model.OutboxPending,
	)
	if err != nil {
		return fmt.Errorf("cancel scheduled notification: %w", err)
	}
	return nil
}

// CancelAllPending cancels every pending entry and returns how many were affected.
func (s *OutboxStore) CancelAllPending(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_notifications SET status = ?, updated_at = ? WHERE status = ?`,
		model.OutboxCancelled, time.Now().UTC(), model.OutboxPending,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel all scheduled notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListDue returns pending entries whose fire time is at or before now, oldest first.
func (s *OutboxStore) ListDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledNotification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+outboxCols+` FROM scheduled_notifications
		 WHERE status = ? AND fire_at <= ? ORDER BY fire_at, id LIMIT ?`,
		model.OutboxPending, now.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (s *OutboxStore) ListPending(ctx context.Context) ([]model.ScheduledNotification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+outboxCols+` FROM scheduled_notifications WHERE status = ? ORDER BY fire_at, id`,
		model.OutboxPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (s *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_notifications SET status = ?, attempts = attempts + 1, last_error = '', updated_at = ? WHERE id = ?`,
		model.OutboxSent, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery error. The entry stays pending until maxAttempts is reached.
func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, cause string, maxAttempts int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scheduled_notifications
		 SET attempts = attempts + 1,
		     last_error = ?,
		     status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END,
		     updated_at = ?
		 WHERE id = ?`,
		cause, maxAttempts, model.OutboxFailed, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

// Cleanup deletes finished entries last touched before the given time.
func (s *OutboxStore) Cleanup(ctx context.Context, before time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM scheduled_notifications WHERE status != ? AND updated_at < ?`,
		model.OutboxPending, before.UTC(),
	)
	if err != nil {
		return fmt.Errorf("cleanup scheduled notifications: %w", err)
	}
	return nil
}

func scanNotification(row rowScanner) (*model.ScheduledNotification, error) {
	var n model.ScheduledNotification
	err := row.Scan(&n.ID, &n.Handle, &n.FireAt, &n.Payload, &n.Status, &n.Attempts, &n.LastError, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanNotifications(rows *sql.Rows) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled notification: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
