// Package layout serves a user's applications grid and sidebar, applying
// saved orders and persisting the orders produced by drag gestures.
package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/lyceum-academy/lyceum/internal/catalog"
	"github.com/lyceum-academy/lyceum/internal/grid"
	"github.com/lyceum-academy/lyceum/internal/logging"
	"github.com/lyceum-academy/lyceum/internal/metrics"
	"github.com/lyceum-academy/lyceum/internal/sidebar"
	"github.com/lyceum-academy/lyceum/internal/store"
)

var ErrNoNavigation = errors.New("layout: strategy cannot resolve neighbors")

// Store is the persistence the service needs. *store.Queries satisfies it.
type Store interface {
	GetAppLayout(ctx context.Context, userID int64) (store.AppLayout, error)
	LockAppLayout(ctx context.Context, userID int64) (store.AppLayout, error)
	UpsertAppOrder(ctx context.Context, userID int64, order []string) error
	UpsertSidebarOrder(ctx context.Context, userID int64, order []string) error
}

// TxFunc runs fn against a Store bound to one transaction.
type TxFunc func(ctx context.Context, fn func(Store) error) error

// PoolTx runs every update in its own transaction on db.
func PoolTx(db store.Beginner) TxFunc {
	return func(ctx context.Context, fn func(Store) error) error {
		return store.InTx(ctx, db, func(q *store.Queries) error { return fn(q) })
	}
}

// Navigator resolves keyboard moves. grid.RectStrategy implements it.
type Navigator interface {
	Neighbor(order []string, key string, dir grid.Direction) (string, bool)
}

// User identifies whose layout is being served.
type User struct {
	ID          int64
	Role        string
	Permissions map[string]store.AppPermissions
}

func (u User) visible() []grid.AppEntry {
	return catalog.Visible(u.Role, u.Permissions)
}

type Service struct {
	store    Store
	tx       TxFunc
	strategy grid.Strategy
	logger   *slog.Logger
}

// NewService returns a service whose updates run directly on s, so two
// concurrent edits by one user are last-write-wins. Use WithTx to serialize
// them.
func NewService(s Store, strategy grid.Strategy, logger *slog.Logger) *Service {
	if strategy == nil {
		strategy = grid.RectStrategy{}
	}
	return &Service{
		store:    s,
		tx:       func(_ context.Context, fn func(Store) error) error { return fn(s) },
		strategy: strategy,
		logger:   logging.OrDefault(logger),
	}
}

// WithTx runs every read-modify-write through tx. The layout row is locked
// for the duration, so concurrent edits by one user apply in turn.
func (s *Service) WithTx(tx TxFunc) *Service {
	s.tx = tx
	return s
}

// Grid returns the apps the user can see, in their saved order. Saved names
// that are no longer visible are dropped and newly visible apps are appended
// in catalog order.
func (s *Service) Grid(ctx context.Context, u User) ([]grid.AppEntry, error) {
	saved, err := s.load(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return arrange(u.visible(), saved.AppOrder), nil
}

// Reorder moves source onto target's slot and persists the resulting order.
// The returned slice is new; nothing previously returned is modified.
func (s *Service) Reorder(ctx context.Context, u User, source, target string) ([]grid.AppEntry, error) {
	var next []grid.AppEntry
	err := s.update(ctx, u.ID, func(st Store, saved store.AppLayout) error {
		entries := arrange(u.visible(), saved.AppOrder)
		order, err := s.drop(entries, source, target)
		if err != nil {
			return err
		}
		if next, err = grid.ApplyOrder(entries, order); err != nil {
			return err
		}
		return st.UpsertAppOrder(ctx, u.ID, order)
	})
	if err != nil {
		return nil, err
	}
	metrics.GridReordersTotal.WithLabelValues("applied").Inc()
	s.logger.Debug("grid reordered", "user_id", u.ID, "source", source, "target", target)
	return next, nil
}

// Nudge moves name onto its visual neighbor in direction dir. At the grid
// edge nothing changes and moved is false.
func (s *Service) Nudge(ctx context.Context, u User, name string, dir grid.Direction) (entries []grid.AppEntry, moved bool, err error) {
	nav, ok := s.strategy.(Navigator)
	if !ok {
		return nil, false, ErrNoNavigation
	}
	err = s.update(ctx, u.ID, func(st Store, saved store.AppLayout) error {
		entries = arrange(u.visible(), saved.AppOrder)
		keys := names(entries)
		if !slices.Contains(keys, name) {
			return fmt.Errorf("%w: %q", grid.ErrUnknownKey, name)
		}
		target, ok := nav.Neighbor(keys, name, dir)
		if !ok {
			return nil
		}
		order, err := s.drop(entries, name, target)
		if err != nil {
			return err
		}
		if entries, err = grid.ApplyOrder(entries, order); err != nil {
			return err
		}
		moved = true
		return st.UpsertAppOrder(ctx, u.ID, order)
	})
	if err != nil {
		return nil, false, err
	}
	if moved {
		metrics.GridReordersTotal.WithLabelValues("applied").Inc()
		s.logger.Debug("grid nudged", "user_id", u.ID, "name", name, "direction", dir.String())
	}
	return entries, moved, nil
}

// drop replays a drag of source onto target over the rendered entries.
func (s *Service) drop(entries []grid.AppEntry, source, target string) ([]string, error) {
	rendered, err := grid.Render(entries, nil)
	if err != nil {
		return nil, err
	}
	drag, err := rendered.BeginDrag(s.strategy, source)
	if err != nil {
		metrics.GridReordersTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	order, ok, err := drag.Drop(target)
	if err != nil {
		metrics.GridReordersTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if !ok {
		metrics.GridReordersTotal.WithLabelValues("canceled").Inc()
		return nil, fmt.Errorf("%w: %q", grid.ErrUnknownKey, target)
	}
	return order, nil
}

// Sidebar returns the user's pinned items.
func (s *Service) Sidebar(ctx context.Context, u User) (sidebar.Sidebar, error) {
	saved, err := s.load(ctx, u.ID)
	if err != nil {
		return sidebar.Sidebar{}, err
	}
	return sidebar.Restore(u.Role, u.visible(), saved.SidebarOrder), nil
}

// DropOnSidebar pins the app named by a raw drag payload. Foreign or
// malformed payloads, apps the user cannot open, and sources that do not
// allow copy leave the sidebar unchanged and report false.
func (s *Service) DropOnSidebar(ctx context.Context, u User, raw string, effect grid.Effect) (sidebar.Sidebar, bool, error) {
	var (
		next     sidebar.Sidebar
		accepted bool
	)
	err := s.update(ctx, u.ID, func(st Store, saved store.AppLayout) error {
		current := sidebar.Restore(u.Role, u.visible(), saved.SidebarOrder)
		next, accepted = current.AcceptDrop(raw, effect)
		if !accepted {
			return nil
		}
		return st.UpsertSidebarOrder(ctx, u.ID, next.Items)
	})
	if err != nil {
		return sidebar.Sidebar{}, false, err
	}
	if !accepted {
		metrics.SidebarDropsTotal.WithLabelValues("ignored").Inc()
		return next, false, nil
	}
	metrics.SidebarDropsTotal.WithLabelValues("pinned").Inc()
	return next, true, nil
}

func (s *Service) UnpinFromSidebar(ctx context.Context, u User, name string) (sidebar.Sidebar, error) {
	return s.editSidebar(ctx, u, func(current sidebar.Sidebar) (sidebar.Sidebar, error) {
		return current.Remove(name)
	})
}

func (s *Service) MoveInSidebar(ctx context.Context, u User, source, target string) (sidebar.Sidebar, error) {
	return s.editSidebar(ctx, u, func(current sidebar.Sidebar) (sidebar.Sidebar, error) {
		return current.Move(grid.RectStrategy{Columns: 1}, source, target)
	})
}

func (s *Service) editSidebar(ctx context.Context, u User, edit func(sidebar.Sidebar) (sidebar.Sidebar, error)) (sidebar.Sidebar, error) {
	var next sidebar.Sidebar
	err := s.update(ctx, u.ID, func(st Store, saved store.AppLayout) error {
		var err error
		next, err = edit(sidebar.Restore(u.Role, u.visible(), saved.SidebarOrder))
		if err != nil {
			return err
		}
		return st.UpsertSidebarOrder(ctx, u.ID, next.Items)
	})
	if err != nil {
		return sidebar.Sidebar{}, err
	}
	return next, nil
}

// update locks the user's layout row and hands the saved layout to fn.
func (s *Service) update(ctx context.Context, userID int64, fn func(Store, store.AppLayout) error) error {
	return s.tx(ctx, func(st Store) error {
		saved, err := st.LockAppLayout(ctx, userID)
		if err != nil {
			return err
		}
		return fn(st, saved)
	})
}

func (s *Service) load(ctx context.Context, userID int64) (store.AppLayout, error) {
	saved, err := s.store.GetAppLayout(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.AppLayout{UserID: userID}, nil
		}
		return store.AppLayout{}, err
	}
	return saved, nil
}

func names(entries []grid.AppEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func arrange(visible []grid.AppEntry, saved []string) []grid.AppEntry {
	out := make([]grid.AppEntry, 0, len(visible))
	placed := make(map[string]struct{}, len(visible))
	for _, name := range saved {
		if _, dup := placed[name]; dup {
			continue
		}
		i := slices.IndexFunc(visible, func(e grid.AppEntry) bool { return e.Name == name })
		if i < 0 {
			continue
		}
		out = append(out, visible[i])
		placed[name] = struct{}{}
	}
	for _, e := range visible {
		if _, ok := placed[e.Name]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
