package viewer

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"mediasort/internal/ports"
)

// Opener implements ports.ViewerOpener with the desktop's default handler
type Opener struct {
	root string
	goos string
}

var _ ports.ViewerOpener = (*Opener)(nil)

// NewOpener creates an opener for files below the media root
func NewOpener(root string) *Opener {
	return &Opener{root: filepath.Clean(root), goos: runtime.GOOS}
}

// OpenFile opens a media file in the system viewer
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Command builds the launcher command for a file. Relative paths are taken
// from the media root; files outside the root are refused.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	target, err := o.Resolve(path)
	if err != nil {
		return nil, err
	}

	switch o.goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", target), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", o.goos)
	}
}

// Resolve returns the absolute path for a file id or absolute path
func (o *Opener) Resolve(path string) (string, error) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(o.root, filepath.FromSlash(path))
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(o.root, target)
	if err != nil {
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file is outside the media root: %s", path)
	}
	return target, nil
}
