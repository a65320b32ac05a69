package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lyceum-academy/lyceum/internal/logging"
)

const pruneVisitsLock = "maintenance:prune-visits"

type VisitDeleter interface {
	DeleteVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Locker serializes a task across server replicas. ok is false when another
// holder has the lock.
type Locker interface {
	TryLock(ctx context.Context, name string) (unlock func(), ok bool, err error)
}

// VisitPruner deletes visit rows older than Retention.
type VisitPruner struct {
	Store     VisitDeleter
	Retention time.Duration
	Locker    Locker
	Logger    *slog.Logger

	now func() time.Time
}

func (p *VisitPruner) Name() string { return "prune-visits" }

func (p *VisitPruner) Run(ctx context.Context) error {
	if p.Store == nil {
		return errors.New("maintenance: visit store is nil")
	}
	if p.Retention <= 0 {
		return nil
	}
	logger := logging.OrDefault(p.Logger)

	if p.Locker != nil {
		unlock, ok, err := p.Locker.TryLock(ctx, pruneVisitsLock)
		if err != nil {
			return err
		}
		if !ok {
			logger.Debug("visit pruning held by another instance")
			return nil
		}
		defer unlock()
	}

	now := time.Now
	if p.now != nil {
		now = p.now
	}
	cutoff := now().Add(-p.Retention)
	deleted, err := p.Store.DeleteVisitsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logger.Info("pruned visits", "deleted", deleted, "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return nil
}
