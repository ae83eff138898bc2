package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session access across replicas. The session
// manager already serializes within a process; a locker extends the same
// guarantee across instances.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired, ctx is canceled, or
	// the implementation gives up. The returned UnlockFunc must be called
	// to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
