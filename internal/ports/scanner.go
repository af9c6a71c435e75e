package ports

import (
	"context"

	"mediasort/internal/domain"
)

// MediaScanner walks a media root and yields the media files it accepts
type MediaScanner interface {
	// Scan fails only when root is missing or not a directory.
	// Unreadable subdirectories become warnings in the result.
	Scan(ctx context.Context, root string) (*domain.ScanResult, error)
}

// Library reads the organized tree under the library directory
type Library interface {
	// Files lists every media file below the library directory.
	// RelativePath of each file is relative to the media root.
	Files(ctx context.Context) ([]domain.MediaFile, error)

	// Exists reports whether a library-relative path is a regular file
	Exists(libraryRel string) bool
}
