package ports

import (
	"time"

	"mediasort/internal/domain"
)

// MoveExecutor performs the filesystem side of a committed run.
// All paths are relative to the media root and slash-separated.
type MoveExecutor interface {
	// Exists reports whether relPath is occupied
	Exists(relPath string) bool

	// PrepareBackup creates a new write-once backup directory for a run
	// and returns its root-relative path
	PrepareBackup(runID string, now time.Time) (string, error)

	// Backup copies f into backupDir, preserving its relative path
	Backup(backupDir string, f domain.MediaFile) error

	// Move relocates a file, creating parent directories. It never
	// overwrites an existing destination.
	Move(fromRel, toRel string) error

	// CopyFromBackup restores backupDir/relPath to relPath
	CopyFromBackup(backupDir, relPath string) error
}

// RunLocker serializes runs that mutate the same media root
type RunLocker interface {
	// TryLock never blocks. ok is false when another process holds the lock.
	TryLock(root string) (release func() error, ok bool, err error)
}

// RunLogWriter persists the JSON log of a run
type RunLogWriter interface {
	WriteRunLog(run *domain.OrganizationRun) (string, error)
}
