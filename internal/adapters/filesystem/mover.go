package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

const backupStampLayout = "20060102-150405"

// Mover implements ports.MoveExecutor rooted at a media directory
type Mover struct {
	fs        afero.Fs
	root      string
	backupDir string
}

var _ ports.MoveExecutor = (*Mover)(nil)

// NewMover creates a mover. backupDir is relative to root.
func NewMover(fsys afero.Fs, root, backupDir string) *Mover {
	return &Mover{fs: fsys, root: root, backupDir: backupDir}
}

func (m *Mover) abs(rel string) string {
	return filepath.Join(m.root, filepath.FromSlash(rel))
}

// Exists reports whether anything occupies relPath
func (m *Mover) Exists(relPath string) bool {
	_, err := m.fs.Stat(m.abs(relPath))
	return err == nil
}

// PrepareBackup creates <backupDir>/<timestamp>-<run prefix>. An existing
// directory is never reused.
func (m *Mover) PrepareBackup(runID string, now time.Time) (string, error) {
	suffix := runID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	dir := path.Join(m.backupDir, now.UTC().Format(backupStampLayout)+"-"+suffix)
	if m.Exists(dir) {
		return "", fmt.Errorf("backup directory %s: %w", dir, fs.ErrExist)
	}
	if err := m.fs.MkdirAll(m.abs(dir), 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	return dir, nil
}

// Backup copies f to backupDir, keeping its root-relative path
func (m *Mover) Backup(backupDir string, f domain.MediaFile) error {
	dst := path.Join(backupDir, f.RelativePath)
	if err := m.copyVerified(f.RelativePath, dst); err != nil {
		return fmt.Errorf("backup %s: %w", f.RelativePath, err)
	}
	return nil
}

// Move renames fromRel to toRel. An occupied destination fails with
// fs.ErrExist. Renames across devices fall back to copy and remove.
func (m *Mover) Move(fromRel, toRel string) error {
	if _, err := m.fs.Stat(m.abs(fromRel)); err != nil {
		return fmt.Errorf("source %s: %w", fromRel, err)
	}
	if m.Exists(toRel) {
		return fmt.Errorf("destination %s: %w", toRel, fs.ErrExist)
	}
	if err := m.fs.MkdirAll(filepath.Dir(m.abs(toRel)), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	err := m.fs.Rename(m.abs(fromRel), m.abs(toRel))
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("rename %s: %w", fromRel, err)
	}

	if err := m.copyVerified(fromRel, toRel); err != nil {
		return err
	}
	if err := m.fs.Remove(m.abs(fromRel)); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// CopyFromBackup restores backupDir/relPath to relPath without overwriting
func (m *Mover) CopyFromBackup(backupDir, relPath string) error {
	return m.copyVerified(path.Join(backupDir, relPath), relPath)
}

// copyVerified copies src to a new dst, keeps the modification time, and
// checks that the byte counts agree
func (m *Mover) copyVerified(srcRel, dstRel string) error {
	srcPath, dstPath := m.abs(srcRel), m.abs(dstRel)

	info, err := m.fs.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("source %s: %w", srcRel, err)
	}
	if err := m.fs.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dstRel, err)
	}

	src, err := m.fs.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcRel, err)
	}
	defer src.Close()

	dst, err := m.fs.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dstRel, err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written != info.Size() {
		err = fmt.Errorf("short copy: wrote %d of %d bytes", written, info.Size())
	}
	if err != nil {
		_ = m.fs.Remove(dstPath)
		return fmt.Errorf("copy %s to %s: %w", srcRel, dstRel, err)
	}

	if err := m.fs.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve times on %s: %w", dstRel, err)
	}
	return nil
}
