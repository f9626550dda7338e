package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"vinscan/internal/services"
)

// Guard holds the cross-process lock that keeps two invocations from
// mutating the session at once.
type Guard struct {
	lock *flock.Flock
}

// AcquireGuard takes the lock at path without waiting. A lock held by another
// process yields services.ErrBusy.
func AcquireGuard(path string) (*Guard, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s held by another vinscan process)", services.ErrBusy, path)
	}
	return &Guard{lock: lock}, nil
}

// Release drops the lock.
func (g *Guard) Release() error {
	if g == nil || g.lock == nil {
		return nil
	}
	return g.lock.Unlock()
}
