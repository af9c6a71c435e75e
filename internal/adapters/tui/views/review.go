package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"mediasort/internal/adapters/tui/styles"
	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
)

// ReviewService loads the review queue and records decisions
type ReviewService interface {
	Queue(ctx context.Context) ([]domain.ReviewItem, error)
	Submit(ctx context.Context, corrections []domain.Correction) (*commands.ImportCorrectionsResult, error)
}

// ReviewViewState represents the state of the review view
type ReviewViewState int

const (
	ReviewLoading ReviewViewState = iota
	ReviewShowList
	ReviewEditing
	ReviewError
)

// ReviewKeyMap defines key bindings for the review view
type ReviewKeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Accept        key.Binding
	AcceptPage    key.Binding
	Edit          key.Binding
	Skip          key.Binding
	Open          key.Binding
	Copy          key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	ReviewSkipped key.Binding
	Help          key.Binding
	Quit          key.Binding
}

var ReviewKeys = ReviewKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "down"),
	),
	Accept: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "accept"),
	),
	AcceptPage: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "accept page"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Skip: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "skip"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy id"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("ctrl+f", "pgdown"),
		key.WithHelp("ctrl+f", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("ctrl+b", "pgup"),
		key.WithHelp("ctrl+b", "prev page"),
	),
	ReviewSkipped: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "review skipped"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// ReviewModel walks the pending review queue one file at a time
type ReviewModel struct {
	ViewState
	service    ReviewService
	queue      *ReviewQueue
	state      ReviewViewState
	err        error
	spinner    spinner.Model
	form       *CorrectionForm
	confirm    ConfirmationModel
	accepted   int
	reviewMode bool
}

// NewReviewModel creates a new review view model
func NewReviewModel(service ReviewService) *ReviewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &ReviewModel{
		service: service,
		queue:   NewReviewQueue(reviewPageSize),
		state:   ReviewLoading,
		spinner: s,
		confirm: NewConfirmationModel(),
		form:    NewCorrectionForm(),
	}
}

// Init loads the queue
func (m *ReviewModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.Reload(),
	)
}

// Reload fetches the pending queue again
func (m *ReviewModel) Reload() tea.Cmd {
	m.state = ReviewLoading
	return func() tea.Msg {
		items, err := m.service.Queue(context.Background())
		if err != nil {
			return ReviewFetchErrMsg{Err: err}
		}
		return ReviewQueueMsg{Items: items}
	}
}

// Update handles messages for the review view
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.state == ReviewLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case ReviewQueueMsg:
		m.queue.Load(msg.Items)
		m.reviewMode = false
		m.state = ReviewShowList
		if m.queue.Len() == 0 {
			m.Notify("Nothing waiting for review")
		}
		return m, nil

	case ReviewFetchErrMsg:
		m.err = msg.Err
		m.state = ReviewError
		return m, nil

	case ReviewSubmittedMsg:
		m.handleSubmitted(msg)
		return m, nil

	case ReviewErrMsg:
		m.Fail(msg.Err)
		return m, nil

	case ReviewCopiedMsg:
		m.Notify("Copied " + msg.FileID)
		return m, nil

	case reviewBulkConfirmedMsg:
		return m, m.submit(m.queue.Page()...)

	case reviewBulkCancelledMsg:
		m.ClearNotice()
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case ReviewShowList:
			return m.handleListKey(msg)
		case ReviewEditing:
			return m.handleEditKey(msg)
		case ReviewError:
			return m, m.done
		case ReviewLoading:
			if key.Matches(msg, ReviewKeys.Quit) {
				return m, m.done
			}
		}
	}

	return m, nil
}

func (m *ReviewModel) done() tea.Msg {
	return ReviewDoneMsg{Accepted: m.accepted}
}

func (m *ReviewModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm.Active() {
		_, cmd := m.confirm.HandleKeyMsg(msg,
			func() tea.Msg { return reviewBulkConfirmedMsg{} },
			func() tea.Msg { return reviewBulkCancelledMsg{} },
		)
		return m, cmd
	}

	switch {
	case key.Matches(msg, ReviewKeys.Quit):
		return m, m.done
	case key.Matches(msg, ReviewKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }
	case key.Matches(msg, ReviewKeys.Up):
		m.queue.Up()
		return m, nil
	case key.Matches(msg, ReviewKeys.Down):
		m.queue.Down()
		return m, nil
	case key.Matches(msg, ReviewKeys.NextPage):
		m.queue.NextPage()
		return m, nil
	case key.Matches(msg, ReviewKeys.PrevPage):
		m.queue.PrevPage()
		return m, nil
	case key.Matches(msg, ReviewKeys.ReviewSkipped):
		if !m.reviewMode && m.queue.Requeue() > 0 {
			m.reviewMode = true
			m.ClearNotice()
		}
		return m, nil
	}

	item, ok := m.queue.Current()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, ReviewKeys.Accept):
		return m, m.submit(item)
	case key.Matches(msg, ReviewKeys.AcceptPage):
		m.confirm.Ask(fmt.Sprintf("Accept %d proposals on this page?", len(m.queue.Page())))
		return m, nil
	case key.Matches(msg, ReviewKeys.Edit):
		m.form.Load(item)
		m.state = ReviewEditing
		m.ClearNotice()
		return m, m.form.Init()
	case key.Matches(msg, ReviewKeys.Skip):
		m.queue.Skip()
		if m.queue.Len() == 0 {
			m.Notify(fmt.Sprintf("All files processed. %d skipped - press 'r' to review", m.queue.SkippedCount()))
		}
		return m, nil
	case key.Matches(msg, ReviewKeys.Open):
		path := item.FilePath
		if path == "" {
			path = item.FileID
		}
		return m, func() tea.Msg { return OpenViewerMsg{Path: path} }
	case key.Matches(msg, ReviewKeys.Copy):
		fileID := item.FileID
		return m, func() tea.Msg {
			if err := clipboard.WriteAll(fileID); err != nil {
				return ReviewErrMsg{Err: fmt.Errorf("copy to clipboard: %w", err)}
			}
			return ReviewCopiedMsg{FileID: fileID}
		}
	}
	return m, nil
}

func (m *ReviewModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.form.Keys.Cancel):
		m.state = ReviewShowList
		return m, nil
	case key.Matches(msg, m.form.Keys.Save):
		correction, err := m.form.Correction()
		if err != nil {
			m.Fail(err)
			return m, nil
		}
		m.state = ReviewShowList
		return m, m.submitCorrections([]domain.Correction{correction})
	}
	return m, m.form.Update(msg)
}

// proposalCorrection accepts the pipeline's proposal as-is
func proposalCorrection(item domain.ReviewItem) domain.Correction {
	return domain.Correction{
		FileID:      item.FileID,
		Category:    item.ProposedCategory,
		Subcategory: item.ProposedSubcategory,
		Stage:       item.ProposedStage,
	}
}

func (m *ReviewModel) submit(items ...domain.ReviewItem) tea.Cmd {
	corrections := make([]domain.Correction, 0, len(items))
	for _, item := range items {
		corrections = append(corrections, proposalCorrection(item))
	}
	return m.submitCorrections(corrections)
}

func (m *ReviewModel) submitCorrections(corrections []domain.Correction) tea.Cmd {
	if len(corrections) == 0 {
		return nil
	}
	return func() tea.Msg {
		result, err := m.service.Submit(context.Background(), corrections)
		if err != nil {
			return ReviewErrMsg{Err: err}
		}
		ids := make([]string, len(corrections))
		for i, c := range corrections {
			ids[i] = c.FileID
		}
		return ReviewSubmittedMsg{FileIDs: ids, Result: result}
	}
}

// handleSubmitted drops decided files from the queue. Rejected corrections
// stay in the queue with the reason shown.
func (m *ReviewModel) handleSubmitted(msg ReviewSubmittedMsg) {
	rejected := make(map[string]bool)
	if msg.Result != nil {
		for _, reason := range msg.Result.Rejected {
			for _, id := range msg.FileIDs {
				if strings.HasPrefix(reason, id+":") {
					rejected[id] = true
				}
			}
		}
	}

	decided := make([]string, 0, len(msg.FileIDs))
	for _, id := range msg.FileIDs {
		if !rejected[id] {
			decided = append(decided, id)
		}
	}
	m.accepted += m.queue.Resolve(decided...)

	switch {
	case msg.Result != nil && len(msg.Result.Rejected) > 0:
		m.Fail(errors.New(strings.Join(msg.Result.Rejected, "; ")))
	case m.queue.Len() == 0 && m.queue.SkippedCount() > 0:
		m.Notify(fmt.Sprintf("All files processed. %d skipped - press 'r' to review", m.queue.SkippedCount()))
	case m.queue.Len() == 0:
		m.Notify(fmt.Sprintf("Review queue empty. %d decisions recorded", m.accepted))
	default:
		m.Notify(fmt.Sprintf("Recorded %d decisions", len(decided)))
	}
}

// Remaining returns the number of files still in the queue
func (m *ReviewModel) Remaining() int {
	return m.queue.Len()
}

// Accepted returns the number of decisions recorded in this session
func (m *ReviewModel) Accepted() int {
	return m.accepted
}

// View renders the review view
func (m *ReviewModel) View() string {
	v := NewViewBuilder().Title("Review Queue")

	switch m.state {
	case ReviewLoading:
		v.Raw(m.spinner.View() + " Loading review queue...\n\n")
		v.Raw(styles.MutedText.Render("Press ") + styles.HelpKey.Render("q") + styles.MutedText.Render(" to quit"))

	case ReviewError:
		v.Raw(styles.ErrorMsg.Render("Error: "))
		if m.err != nil {
			v.Raw(m.err.Error())
		}
		v.BlankLine().BlankLine()
		v.Muted("Press any key to quit")

	case ReviewEditing:
		v.Field("File", m.form.FileID()).BlankLine()
		v.Notice(m.Notice)
		v.Raw(m.form.View())

	case ReviewShowList:
		if m.reviewMode {
			v.Raw(styles.Success.Render("Reviewing skipped files")).BlankLine().BlankLine()
		}
		if m.queue.Len() == 0 {
			v.Notice(m.Notice)
			v.Help(ReviewKeys.ReviewSkipped, ReviewKeys.Quit)
			break
		}

		m.renderRows(v)
		if page, pages := m.queue.Pages(); pages > 1 {
			v.BlankLine().Muted(fmt.Sprintf("Page %d/%d", page, pages))
		}
		if item, ok := m.queue.Current(); ok {
			v.BlankLine().Item(item)
		}
		v.BlankLine()

		if m.confirm.Active() {
			v.Line(RenderConfirmPrompt(m.confirm.Question))
		} else {
			v.Notice(m.Notice)
		}

		v.Help(ReviewKeys.Accept, ReviewKeys.Edit, ReviewKeys.Skip, ReviewKeys.Open, ReviewKeys.Copy, ReviewKeys.Help, ReviewKeys.Quit)
		status := fmt.Sprintf("     %d remaining", m.queue.Len())
		if m.accepted > 0 {
			status += fmt.Sprintf(", %d decided", m.accepted)
		}
		if n := m.queue.SkippedCount(); n > 0 {
			status += fmt.Sprintf(", %d skipped", n)
		}
		v.Raw(status)
	}

	return v.String()
}

func (m *ReviewModel) renderRows(v *ViewBuilder) {
	start := m.queue.PageStart()
	for i, item := range m.queue.Page() {
		if start+i == m.queue.Cursor() {
			v.Raw(styles.RowSelected.Render(fmt.Sprintf(" > %s ", item.FileID)))
			v.Raw(styles.MutedText.Render(" → "))
			v.Line(styles.Proposal.Render(proposalLabel(item)))
			continue
		}
		marker := "   "
		if item.Flagged {
			marker = styles.Flag.Render(" ! ")
		}
		v.Line(marker + item.FileID)
	}
}

// Messages

// ReviewQueueMsg carries the loaded queue
type ReviewQueueMsg struct {
	Items []domain.ReviewItem
}

// ReviewFetchErrMsg indicates the queue could not be loaded
type ReviewFetchErrMsg struct {
	Err error
}

// ReviewSubmittedMsg indicates decisions were recorded
type ReviewSubmittedMsg struct {
	FileIDs []string
	Result  *commands.ImportCorrectionsResult
}

// ReviewErrMsg indicates a failed action
type ReviewErrMsg struct {
	Err error
}

// ReviewCopiedMsg indicates a file id was copied
type ReviewCopiedMsg struct {
	FileID string
}

// ReviewDoneMsg indicates the user left the review
type ReviewDoneMsg struct {
	Accepted int
}

type reviewBulkConfirmedMsg struct{}

type reviewBulkCancelledMsg struct{}
