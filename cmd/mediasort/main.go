package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mediasort/internal/adapters/tui"
	"mediasort/internal/adapters/viewer"
	"mediasort/internal/workspace"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	rootFlag := flag.String("root", "", "media root to review")
	flag.Parse()

	// Log output would corrupt the screen; the log file still receives it
	ws, err := workspace.Open(workspace.Options{
		ConfigPath: *configFlag,
		Root:       *rootFlag,
		LogOutput:  io.Discard,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ws.Close()

	service := tui.NewReviewService(ws.Store, ws.Config.StageVocabulary())
	app := tui.NewApp(service, viewer.NewOpener(ws.Root))

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		ws.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if n := app.Accepted(); n > 0 {
		fmt.Printf("Recorded %d review decisions. Run `mediasort-cli organize --mode commit` to apply them.\n", n)
	}
}
