package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"mediasort/internal/adapters/tui/views"
	"mediasort/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewReview ViewState = iota
	ViewHelp
)

// App is the main TUI application model
type App struct {
	viewer ports.ViewerOpener

	state  ViewState
	review *views.ReviewModel
	help   *views.HelpModel

	accepted int

	width  int
	height int
}

// NewApp creates a new TUI application. viewer may be nil.
func NewApp(service views.ReviewService, viewer ports.ViewerOpener) *App {
	return &App{
		viewer: viewer,
		state:  ViewReview,
		review: views.NewReviewModel(service),
		help:   views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.review.Init()
}

// Accepted returns the number of decisions recorded before the app quit
func (a *App) Accepted() int {
	return a.accepted
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.review.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.accepted = a.review.Accepted()
			return a, tea.Quit
		}

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToReviewMsg:
		a.state = ViewReview
		return a, nil

	case views.ReviewDoneMsg:
		a.accepted = msg.Accepted
		return a, tea.Quit

	case views.OpenViewerMsg:
		return a, a.openViewer(msg.Path)

	case viewerFinishedMsg:
		if msg.err != nil {
			a.review.Fail(msg.err)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewReview:
		_, cmd = a.review.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type viewerFinishedMsg struct{ err error }

func (a *App) openViewer(path string) tea.Cmd {
	if a.viewer == nil {
		return nil
	}
	viewer := a.viewer
	return func() tea.Msg {
		return viewerFinishedMsg{err: viewer.OpenFile(path)}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewHelp:
		return a.help.View()
	default:
		return a.review.View()
	}
}
