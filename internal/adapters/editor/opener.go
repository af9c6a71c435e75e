package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mediasort/internal/ports"
)

// Opener implements ports.EditorOpener
type Opener struct {
	command  string
	getenv   func(string) string
	lookPath func(string) (string, error)
}

var _ ports.EditorOpener = (*Opener)(nil)

// NewOpener creates an editor opener. command is the configured editor and
// may carry arguments ("code --wait"); empty falls back to the environment.
func NewOpener(command string) *Opener {
	return &Opener{
		command:  command,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
	}
}

// OpenFile opens a file in the user's preferred editor and waits for it
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file in the editor
// This is useful for integrating with bubbletea's ExecProcess
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	fields := strings.Fields(o.findEditor())
	if len(fields) == 0 {
		return nil, fmt.Errorf("no editor found: set [editor] command or $EDITOR")
	}

	args := append(fields[1:], path)
	cmd := exec.Command(fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	if o.command != "" {
		return o.command
	}
	if editor := o.getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := o.getenv("VISUAL"); visual != "" {
		return visual
	}

	// Try common editors
	editors := []string{"nvim", "vim", "vi", "nano"}
	for _, editor := range editors {
		if path, err := o.lookPath(editor); err == nil {
			return path
		}
	}

	return ""
}
