package views

// Notice is the one-line status shown under the review list
type Notice struct {
	Text string
	Err  bool
}

// ViewState holds the terminal size and the current notice of a view
type ViewState struct {
	Width  int
	Height int
	Notice Notice
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// Notify shows an informational notice
func (s *ViewState) Notify(text string) {
	s.Notice = Notice{Text: text}
}

// Fail shows err as an error notice
func (s *ViewState) Fail(err error) {
	if err == nil {
		s.Notice = Notice{}
		return
	}
	s.Notice = Notice{Text: err.Error(), Err: true}
}

// ClearNotice hides the notice
func (s *ViewState) ClearNotice() {
	s.Notice = Notice{}
}

// Messages exchanged between the root model and its views

// OpenViewerMsg requests opening a file in the system viewer
type OpenViewerMsg struct {
	Path string
}

// SwitchToHelpMsg requests switching to the help view
type SwitchToHelpMsg struct{}

// SwitchToReviewMsg requests switching back to the review view
type SwitchToReviewMsg struct{}
