package store

import (
	"context"
	"time"
)

type NotificationRecord struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	NewJobs   int       `json:"new_jobs"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *DB) RecordNotification(ctx context.Context, rec NotificationRecord) (NotificationRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO notifications(title, message, new_jobs, created_at)
VALUES(?,?,?,?);`,
		rec.Title, rec.Message, rec.NewJobs, rec.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return NotificationRecord{}, err
	}
	rec.ID, _ = res.LastInsertId()
	return rec, nil
}

// ListNotifications returns the newest records first.
func (d *DB) ListNotifications(ctx context.Context, limit int) ([]NotificationRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, title, message, new_jobs, created_at
FROM notifications
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NotificationRecord
	for rows.Next() {
		var r NotificationRecord
		var created string
		if err := rows.Scan(&r.ID, &r.Title, &r.Message, &r.NewJobs, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}
