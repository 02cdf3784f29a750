// pattern: Imperative Shell
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "projmux.lock"

	// DefaultTimeout bounds how long Acquire waits for another launcher.
	DefaultTimeout = 5 * time.Second

	retryDelay = 50 * time.Millisecond
)

// Locker serializes session creation between concurrent launchers.
type Locker struct {
	path    string
	timeout time.Duration
}

// New returns a Locker using a lock file in dataDir.
func New(dataDir string, timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locker{
		path:    filepath.Join(dataDir, lockFileName),
		timeout: timeout,
	}
}

// Acquire blocks until the exclusive lock is held, the timeout passes or
// ctx is done. The returned function releases the lock.
func (l *Locker) Acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	fl := flock.New(l.path)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another projmux instance holds %s", l.path)
	}
	return func() { _ = fl.Unlock() }, nil
}
