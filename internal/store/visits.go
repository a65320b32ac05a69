package store

import (
	"context"
	"time"
)

type InsertVisitParams struct {
	VisitorID string
	Path      string
	Referrer  string
	UserAgent string
	IP        string
}

func (q *Queries) InsertVisit(ctx context.Context, arg InsertVisitParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO visits (visitor_id, path, referrer, user_agent, ip)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		arg.VisitorID, arg.Path, arg.Referrer, arg.UserAgent, arg.IP,
	).Scan(&id)
	return id, err
}

type VisitPathCount struct {
	Path   string
	Visits int64
}

// CountVisitsByPath aggregates visits recorded since the given time.
func (q *Queries) CountVisitsByPath(ctx context.Context, since time.Time) ([]VisitPathCount, error) {
	rows, err := q.db.Query(ctx, `
		SELECT path, count(*) FROM visits
		WHERE created_at >= $1
		GROUP BY path
		ORDER BY count(*) DESC, path`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VisitPathCount
	for rows.Next() {
		var c VisitPathCount
		if err := rows.Scan(&c.Path, &c.Visits); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteVisitsBefore removes visits recorded before cutoff and reports how
// many rows were deleted.
func (q *Queries) DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM visits WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// TryAdvisoryLock takes a session-level advisory lock for key without
// waiting. Callers must hold a dedicated connection.
func (q *Queries) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&ok)
	return ok, err
}

func (q *Queries) AdvisoryUnlock(ctx context.Context, key int64) error {
	_, err := q.db.Exec(ctx, `SELECT pg_advisory_unlock($1)`, key)
	return err
}
