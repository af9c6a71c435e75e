package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// Library reads the organized tree below <root>/<libraryDir>
type Library struct {
	fs         afero.Fs
	root       string
	libraryDir string
	scanner    *Scanner
}

var _ ports.Library = (*Library)(nil)

// NewLibrary creates a library reader. Exclusions do not apply inside the
// organized tree; extensions still do.
func NewLibrary(fsys afero.Fs, root, libraryDir string, exts domain.ExtensionSet) *Library {
	return &Library{
		fs:         fsys,
		root:       root,
		libraryDir: libraryDir,
		scanner: NewScanner(fsys, ScanOptions{
			MaxDepth:   DefaultMaxDepth,
			Extensions: exts,
			Excluded:   []string{},
		}, nil),
	}
}

// Files lists media files in the library with root-relative paths.
// A missing library directory yields no files.
func (l *Library) Files(ctx context.Context) ([]domain.MediaFile, error) {
	dir := filepath.Join(l.root, filepath.FromSlash(l.libraryDir))
	if _, err := l.fs.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	result, err := l.scanner.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}

	files := make([]domain.MediaFile, len(result.Files))
	for i, f := range result.Files {
		rel := path.Join(l.libraryDir, f.RelativePath)
		files[i] = domain.NewMediaFile(f.AbsolutePath, rel, f.SizeBytes, f.ModifiedAt)
		files[i].Kind = f.Kind
	}
	return files, nil
}

// Exists reports whether a library-relative path is a regular file
func (l *Library) Exists(libraryRel string) bool {
	p := filepath.Join(l.root, filepath.FromSlash(l.libraryDir), filepath.FromSlash(libraryRel))
	info, err := l.fs.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
