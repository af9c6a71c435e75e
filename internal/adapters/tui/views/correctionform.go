package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mediasort/internal/adapters/tui/styles"
	"mediasort/internal/domain"
)

const (
	fieldCategory = iota
	fieldSubcategory
	fieldStage
	fieldCount
)

var errCategoryRequired = errors.New("category is required")

// CorrectionFormKeyMap defines key bindings for the correction form
type CorrectionFormKeyMap struct {
	Save   key.Binding
	Cancel key.Binding
	Next   key.Binding
	Prev   key.Binding
}

var CorrectionFormKeys = CorrectionFormKeyMap{
	Save: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev field"),
	),
}

// CorrectionForm edits the category, subcategory and stage of one review item
type CorrectionForm struct {
	fileID string
	inputs [fieldCount]textinput.Model
	focus  int
	Keys   CorrectionFormKeyMap
}

var correctionLabels = [fieldCount]string{"Category", "Subcategory", "Stage"}

// NewCorrectionForm creates an empty form
func NewCorrectionForm() *CorrectionForm {
	f := &CorrectionForm{Keys: CorrectionFormKeys}
	placeholders := [fieldCount]string{"birds", domain.DefaultSubcategory, "detailed"}
	limits := [fieldCount]int{64, 64, 32}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		f.inputs[i] = in
	}
	return f
}

// Load fills the form with the item's proposal and focuses the category
func (f *CorrectionForm) Load(item domain.ReviewItem) {
	f.fileID = item.FileID
	f.inputs[fieldCategory].SetValue(item.ProposedCategory)
	f.inputs[fieldSubcategory].SetValue(item.ProposedSubcategory)
	f.inputs[fieldStage].SetValue(string(item.ProposedStage))
	f.focusField(fieldCategory)
}

// FileID returns the file being corrected
func (f *CorrectionForm) FileID() string {
	return f.fileID
}

// Init returns the cursor blink command
func (f *CorrectionForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update moves focus on tab and shift+tab and feeds other keys to the
// focused field
func (f *CorrectionForm) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.Keys.Next):
			f.focusField((f.focus + 1) % fieldCount)
			return nil
		case key.Matches(msg, f.Keys.Prev):
			f.focusField((f.focus + fieldCount - 1) % fieldCount)
			return nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// Value returns the trimmed value of a field
func (f *CorrectionForm) Value(field int) string {
	if field < 0 || field >= fieldCount {
		return ""
	}
	return strings.TrimSpace(f.inputs[field].Value())
}

// SetValue replaces the value of a field
func (f *CorrectionForm) SetValue(field int, value string) {
	if field < 0 || field >= fieldCount {
		return
	}
	f.inputs[field].SetValue(value)
}

// Correction returns the reviewer's decision for the loaded file. The stage
// is lowercased so "Final" and "final" name the same stage.
func (f *CorrectionForm) Correction() (domain.Correction, error) {
	category := f.Value(fieldCategory)
	if category == "" {
		return domain.Correction{}, errCategoryRequired
	}
	return domain.Correction{
		FileID:      f.fileID,
		Category:    category,
		Subcategory: f.Value(fieldSubcategory),
		Stage:       domain.Stage(strings.ToLower(f.Value(fieldStage))),
	}, nil
}

// View renders the fields and the form's key help
func (f *CorrectionForm) View() string {
	var b strings.Builder
	for i := range f.inputs {
		b.WriteString(styles.InputLabel.Render(correctionLabels[i]))
		b.WriteString("\n")
		style := styles.InputField
		if i == f.focus {
			style = styles.InputFocused
		}
		b.WriteString(style.Render(f.inputs[i].View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(keyHelp(f.Keys.Next, f.Keys.Save, f.Keys.Cancel))
	return b.String()
}

func (f *CorrectionForm) focusField(field int) {
	f.inputs[f.focus].Blur()
	f.focus = field
	f.inputs[f.focus].Focus()
}
