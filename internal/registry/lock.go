package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockPollInterval = 200 * time.Millisecond

// AcquireLock obtains the lock guarding writes to the registry cache at dir.
// The returned release func is always safe to call.
func AcquireLock(dir string, timeout time.Duration) (func(), error) {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return func() {}, fmt.Errorf("cannot create lock dir %s: %w", parent, err)
	}
	lockPath := filepath.Join(parent, filepath.Base(dir)+".lock")
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire registry lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another registry build is in progress (lock: %s)", lockPath)
		}
		time.Sleep(lockPollInterval)
	}
}
