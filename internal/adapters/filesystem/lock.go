package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"mediasort/internal/ports"
)

// Locker hands out per-root advisory locks kept in a state directory
type Locker struct {
	dir string
}

var _ ports.RunLocker = (*Locker)(nil)

// NewLocker creates a locker storing lock files in dir
func NewLocker(dir string) *Locker {
	return &Locker{dir: dir}
}

// LockPath returns the lock file used for root
func (l *Locker) LockPath(root string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(l.dir, hex.EncodeToString(hash[:8])+".lock")
}

// TryLock acquires the lock for root without waiting
func (l *Locker) TryLock(root string) (func() error, bool, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, false, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(l.LockPath(root))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return lock.Unlock, true, nil
}
