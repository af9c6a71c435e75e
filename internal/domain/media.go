package domain

import (
	"path"
	"strings"
	"time"
)

// MediaKind distinguishes the two media families the scanner accepts
type MediaKind int

const (
	MediaKindUnknown MediaKind = iota
	MediaKindImage
	MediaKindVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaKindImage:
		return "image"
	case MediaKindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// DefaultImageExtensions lists the image extensions accepted by default (without dot)
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff"}

// DefaultVideoExtensions lists the video extensions accepted by default (without dot)
var DefaultVideoExtensions = []string{"mp4", "mov", "avi", "mkv", "webm"}

// DefaultExcludedSegments are the directory name fragments that mark
// archive/backup subtrees. Matching is case-insensitive substring.
var DefaultExcludedSegments = []string{"archive", "backup", "original-files"}

// MediaFile is an immutable record produced by a scan.
// Identity is AbsolutePath.
type MediaFile struct {
	AbsolutePath      string
	RelativePath      string   // Slash-separated, relative to the scanned root
	FileName          string   // Base name including extension
	Extension         string   // Lowercase, without the leading dot
	DirectorySegments []string // Directories between root and file, in order
	Kind              MediaKind
	SizeBytes         int64
	ModifiedAt        time.Time
}

// NewMediaFile builds a MediaFile from an absolute path and its root-relative
// slash path. Extension and directory segments are derived from relPath.
func NewMediaFile(absPath, relPath string, size int64, modTime time.Time) MediaFile {
	relPath = strings.TrimPrefix(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), "/")
	name := path.Base(relPath)

	var segments []string
	if dir := path.Dir(relPath); dir != "." && dir != "/" {
		segments = strings.Split(dir, "/")
	}

	return MediaFile{
		AbsolutePath:      absPath,
		RelativePath:      relPath,
		FileName:          name,
		Extension:         ExtensionOf(name),
		DirectorySegments: segments,
		Kind:              DefaultExtensionSet().Kind(ExtensionOf(name)),
		SizeBytes:         size,
		ModifiedAt:        modTime,
	}
}

// Stem returns the file name without its extension
func (f MediaFile) Stem() string {
	return strings.TrimSuffix(f.FileName, path.Ext(f.FileName))
}

// ExtensionOf returns the lowercase extension of name without the dot
func ExtensionOf(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// ExtensionSet classifies extensions into media kinds
type ExtensionSet struct {
	images map[string]bool
	videos map[string]bool
}

// NewExtensionSet builds a set from image and video extension lists.
// Leading dots and case are ignored.
func NewExtensionSet(images, videos []string) ExtensionSet {
	set := ExtensionSet{
		images: make(map[string]bool, len(images)),
		videos: make(map[string]bool, len(videos)),
	}
	for _, ext := range images {
		set.images[normalizeExt(ext)] = true
	}
	for _, ext := range videos {
		set.videos[normalizeExt(ext)] = true
	}
	return set
}

// DefaultExtensionSet returns the default image/video allowlist
func DefaultExtensionSet() ExtensionSet {
	return NewExtensionSet(DefaultImageExtensions, DefaultVideoExtensions)
}

// Kind returns the media kind for an extension, or MediaKindUnknown
func (s ExtensionSet) Kind(ext string) MediaKind {
	ext = normalizeExt(ext)
	switch {
	case s.images[ext]:
		return MediaKindImage
	case s.videos[ext]:
		return MediaKindVideo
	default:
		return MediaKindUnknown
	}
}

// Accepts reports whether ext is in the allowlist
func (s ExtensionSet) Accepts(ext string) bool {
	return s.Kind(ext) != MediaKindUnknown
}

// Empty reports whether the set accepts nothing
func (s ExtensionSet) Empty() bool {
	return len(s.images)+len(s.videos) == 0
}

// IsImage reports whether the file is an image
func (f MediaFile) IsImage() bool {
	return f.Kind == MediaKindImage
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsExcludedSegment reports whether a directory name contains any of the
// excluded fragments, case-insensitively.
func IsExcludedSegment(name string, excluded []string) bool {
	lower := strings.ToLower(name)
	for _, frag := range excluded {
		frag = strings.ToLower(strings.TrimSpace(frag))
		if frag != "" && strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// ScanResult is one scan generation of a media root
type ScanResult struct {
	Root     string
	Files    []MediaFile // Depth-first, lexical within a directory
	Warnings []ScanWarning
}
