package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediasort/internal/domain"
	"mediasort/internal/logging"
	"mediasort/internal/ports"
)

// DefaultMaxDepth bounds directory recursion below the scan root
const DefaultMaxDepth = 5

// ScanOptions controls which files a Scanner accepts
type ScanOptions struct {
	MaxDepth   int
	Extensions domain.ExtensionSet
	Excluded   []string
}

// Scanner implements ports.MediaScanner over an afero filesystem
type Scanner struct {
	fs     afero.Fs
	opts   ScanOptions
	logger *slog.Logger
}

var _ ports.MediaScanner = (*Scanner)(nil)

// NewScanner creates a scanner. A zero MaxDepth means DefaultMaxDepth.
func NewScanner(fsys afero.Fs, opts ScanOptions, logger *slog.Logger) *Scanner {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Extensions.Empty() {
		opts.Extensions = domain.DefaultExtensionSet()
	}
	if opts.Excluded == nil {
		opts.Excluded = domain.DefaultExcludedSegments
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{fs: fsys, opts: opts, logger: logger}
}

// Scan walks root depth-first in lexical order
func (s *Scanner) Scan(ctx context.Context, root string) (*domain.ScanResult, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("media root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media root %s is not a directory: %w", root, fs.ErrNotExist)
	}

	result := &domain.ScanResult{Root: root}
	entries, err := afero.ReadDir(s.fs, root)
	if err != nil {
		return nil, fmt.Errorf("read media root: %w", err)
	}
	if err := s.walk(ctx, root, "", entries, 0, result); err != nil {
		return nil, err
	}

	s.logger.Debug("scan complete",
		logging.String(logging.FieldRoot, root),
		logging.Int("files", len(result.Files)),
		logging.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (s *Scanner) walk(ctx context.Context, root, rel string, entries []fs.FileInfo, depth int, result *domain.ScanResult) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		childRel := path.Join(rel, name)

		if entry.IsDir() {
			if domain.IsExcludedSegment(name, s.opts.Excluded) {
				s.logger.Debug("skipping excluded directory", logging.String(logging.FieldFile, childRel))
				continue
			}
			if depth+1 > s.opts.MaxDepth {
				s.logger.Debug("skipping directory beyond max depth", logging.String(logging.FieldFile, childRel))
				continue
			}
			children, err := afero.ReadDir(s.fs, filepath.Join(root, filepath.FromSlash(childRel)))
			if err != nil {
				s.warn(result, childRel, err)
				continue
			}
			if err := s.walk(ctx, root, childRel, children, depth+1, result); err != nil {
				return err
			}
			continue
		}

		if !entry.Mode().IsRegular() {
			continue
		}
		kind := s.opts.Extensions.Kind(domain.ExtensionOf(name))
		if kind == domain.MediaKindUnknown {
			continue
		}

		f := domain.NewMediaFile(filepath.Join(root, filepath.FromSlash(childRel)), childRel, entry.Size(), entry.ModTime())
		f.Kind = kind
		result.Files = append(result.Files, f)
	}
	return nil
}

func (s *Scanner) warn(result *domain.ScanResult, rel string, err error) {
	result.Warnings = append(result.Warnings, domain.ScanWarning{Path: rel, Reason: err.Error()})
	s.logger.Warn("unreadable directory skipped",
		logging.String(logging.FieldFile, rel),
		logging.Error(err),
	)
}
