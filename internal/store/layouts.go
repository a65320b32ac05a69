package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AppLayout is a user's saved grid order and pinned sidebar items.
// SidebarOrder is nil until the user changes the sidebar.
type AppLayout struct {
	UserID       int64
	AppOrder     []string
	SidebarOrder []string
	UpdatedAt    time.Time
}

func (q *Queries) GetAppLayout(ctx context.Context, userID int64) (AppLayout, error) {
	return q.scanAppLayout(ctx,
		`SELECT user_id, app_order, sidebar_order, updated_at FROM app_layouts WHERE user_id = $1`,
		userID,
	)
}

func (q *Queries) scanAppLayout(ctx context.Context, query string, userID int64) (AppLayout, error) {
	var (
		l       AppLayout
		apps    []byte
		sidebar []byte
	)
	err := q.db.QueryRow(ctx, query, userID).Scan(&l.UserID, &apps, &sidebar, &l.UpdatedAt)
	if err != nil {
		return AppLayout{}, err
	}
	if len(apps) > 0 {
		if err := json.Unmarshal(apps, &l.AppOrder); err != nil {
			return AppLayout{}, fmt.Errorf("decode app order for user %d: %w", userID, err)
		}
	}
	if len(sidebar) > 0 {
		if err := json.Unmarshal(sidebar, &l.SidebarOrder); err != nil {
			return AppLayout{}, fmt.Errorf("decode sidebar order for user %d: %w", userID, err)
		}
	}
	return l, nil
}

// LockAppLayout creates the user's layout row if needed and locks it until
// the surrounding transaction ends. Outside a transaction the lock is
// released as soon as the statement returns.
func (q *Queries) LockAppLayout(ctx context.Context, userID int64) (AppLayout, error) {
	if _, err := q.db.Exec(ctx,
		`INSERT INTO app_layouts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return AppLayout{}, err
	}
	return q.scanAppLayout(ctx,
		`SELECT user_id, app_order, sidebar_order, updated_at FROM app_layouts WHERE user_id = $1 FOR UPDATE`,
		userID,
	)
}

func (q *Queries) UpsertAppOrder(ctx context.Context, userID int64, order []string) error {
	raw, err := encodeOrder(order)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO app_layouts (user_id, app_order, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET app_order = EXCLUDED.app_order, updated_at = now()`,
		userID, raw,
	)
	return err
}

func (q *Queries) UpsertSidebarOrder(ctx context.Context, userID int64, order []string) error {
	raw, err := encodeOrder(order)
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO app_layouts (user_id, sidebar_order, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET sidebar_order = EXCLUDED.sidebar_order, updated_at = now()`,
		userID, raw,
	)
	return err
}

func encodeOrder(order []string) (string, error) {
	if order == nil {
		order = []string{}
	}
	raw, err := json.Marshal(order)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
