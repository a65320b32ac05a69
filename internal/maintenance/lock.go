package maintenance

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lyceum-academy/lyceum/internal/store"
)

// AdvisoryLocker implements Locker with Postgres session advisory locks. The
// lock lives on a pooled connection that is held until unlock.
type AdvisoryLocker struct {
	Pool *pgxpool.Pool
}

func (l AdvisoryLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	if l.Pool == nil {
		return nil, false, errors.New("maintenance: lock pool is nil")
	}
	conn, err := l.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	q := store.New(conn)
	key := lockKey(name)

	ok, err := q.TryAdvisoryLock(ctx, key)
	if err != nil || !ok {
		conn.Release()
		return nil, false, err
	}
	return func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := q.AdvisoryUnlock(unlockCtx, key); err != nil {
			// A failed unlock leaves the lock on the session; drop the connection.
			_ = conn.Conn().Close(unlockCtx)
		}
		conn.Release()
	}, true, nil
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
