package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNoAlarm = errors.New("alarm not found")

// Alarm is a named periodic timer that outlives the agent process.
type Alarm struct {
	Name          string
	PeriodMinutes int
	CreatedAt     time.Time
	LastFiredAt   time.Time // zero until the first fire
}

func (a Alarm) Period() time.Duration {
	return time.Duration(a.PeriodMinutes) * time.Minute
}

func (d *DB) GetAlarm(ctx context.Context, name string) (Alarm, error) {
	var a Alarm
	var created, fired string
	err := d.Pool.QueryRowContext(ctx, `
SELECT name, period_minutes, created_at, last_fired_at
FROM alarms WHERE name = ? LIMIT 1;`, name,
	).Scan(&a.Name, &a.PeriodMinutes, &created, &fired)
	if err == sql.ErrNoRows {
		return Alarm{}, ErrNoAlarm
	}
	if err != nil {
		return Alarm{}, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, created)
	if fired != "" {
		a.LastFiredAt, _ = time.Parse(time.RFC3339, fired)
	}
	return a, nil
}

// CreateAlarm installs or replaces name with the given period. Replacing
// resets the last fire time, like re-creating a browser alarm.
func (d *DB) CreateAlarm(ctx context.Context, name string, periodMinutes int) (Alarm, error) {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO alarms(name, period_minutes, created_at, last_fired_at)
VALUES(?,?,?,'')
ON CONFLICT(name) DO UPDATE SET
  period_minutes = excluded.period_minutes,
  created_at = excluded.created_at,
  last_fired_at = '';
`, name, periodMinutes, now.Format(time.RFC3339))
	if err != nil {
		return Alarm{}, err
	}
	return Alarm{Name: name, PeriodMinutes: periodMinutes, CreatedAt: now}, nil
}

func (d *DB) MarkAlarmFired(ctx context.Context, name string, at time.Time) error {
	res, err := d.Pool.ExecContext(ctx,
		`UPDATE alarms SET last_fired_at = ? WHERE name = ?;`,
		at.UTC().Format(time.RFC3339), name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoAlarm
	}
	return nil
}
