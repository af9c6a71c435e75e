package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/dustin/go-humanize"

	"mediasort/internal/adapters/tui/styles"
	"mediasort/internal/domain"
)

func keyHelp(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// proposalLabel renders "category/subcategory · stage", leaving out the
// default subcategory
func proposalLabel(item domain.ReviewItem) string {
	label := item.ProposedCategory
	if item.ProposedSubcategory != "" && item.ProposedSubcategory != domain.DefaultSubcategory {
		label += "/" + item.ProposedSubcategory
	}
	if item.ProposedStage != "" {
		label += " · " + string(item.ProposedStage)
	}
	return label
}

// ViewBuilder accumulates the lines of a review screen
type ViewBuilder struct {
	b strings.Builder
}

// NewViewBuilder creates a new view builder
func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

// Title adds a title section
func (v *ViewBuilder) Title(title string) *ViewBuilder {
	v.b.WriteString(styles.Title.Render(title))
	v.b.WriteString("\n\n")
	return v
}

// Line adds a line of text
func (v *ViewBuilder) Line(text string) *ViewBuilder {
	v.b.WriteString(text)
	v.b.WriteString("\n")
	return v
}

// BlankLine adds a blank line
func (v *ViewBuilder) BlankLine() *ViewBuilder {
	v.b.WriteString("\n")
	return v
}

// Muted adds muted text followed by a newline
func (v *ViewBuilder) Muted(text string) *ViewBuilder {
	return v.Line(styles.MutedText.Render(text))
}

// Field adds a "label: value" line
func (v *ViewBuilder) Field(label, value string) *ViewBuilder {
	return v.Line(styles.InputLabel.Render(label+":") + " " + value)
}

// Notice adds the notice if there is one
func (v *ViewBuilder) Notice(n Notice) *ViewBuilder {
	switch {
	case n.Text == "":
		return v
	case n.Err:
		v.b.WriteString(styles.ErrorMsg.Render(n.Text))
	default:
		v.b.WriteString(styles.Success.Render(n.Text))
	}
	v.b.WriteString("\n\n")
	return v
}

// Item adds the detail block for the selected review item
func (v *ViewBuilder) Item(item domain.ReviewItem) *ViewBuilder {
	v.Field("Proposal", proposalLabel(item))
	conf := styles.ConfidenceStyle(item.Confidence).Render(fmt.Sprintf("%.0f%%", item.Confidence*100))
	v.Field("Confidence", conf)
	if item.Flagged {
		reason := item.FlagReason
		if reason == "" {
			reason = "flagged"
		}
		v.Field("Flag", styles.Flag.Render(reason))
	}
	if !item.UpdatedAt.IsZero() {
		v.Field("Updated", humanize.Time(item.UpdatedAt))
	}
	return v
}

// Help adds a help line with key bindings
func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	v.b.WriteString(keyHelp(bindings...))
	return v
}

// Raw adds raw text without any formatting
func (v *ViewBuilder) Raw(text string) *ViewBuilder {
	v.b.WriteString(text)
	return v
}

// String returns the built view wrapped in the app style
func (v *ViewBuilder) String() string {
	return styles.App.Render(v.b.String())
}
