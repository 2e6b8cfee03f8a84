package index

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockFile = "cache.lock"

// acquireSnapshotLock obtains the snapshot write lock for dir, preventing
// two processes from interleaving artifact writes.
func acquireSnapshotLock(dir string, timeout time.Duration) (func(), error) {
	l := flock.New(filepath.Join(dir, lockFile))
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire snapshot lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another process is writing the snapshot (lock: %s)", filepath.Join(dir, lockFile))
		}
		time.Sleep(100 * time.Millisecond)
	}
}
