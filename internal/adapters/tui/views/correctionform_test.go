package views

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mediasort/internal/domain"
)

func TestCorrectionForm_Correction(t *testing.T) {
	tests := []struct {
		name     string
		category string
		sub      string
		stage    string
		want     domain.Correction
		wantErr  error
	}{
		{
			name:     "proposal kept",
			category: "birds",
			sub:      "raptors",
			stage:    "detailed",
			want:     domain.Correction{FileID: "inbox/IMG_0000.jpg", Category: "birds", Subcategory: "raptors", Stage: "detailed"},
		},
		{
			name:     "stage lowercased and spaces trimmed",
			category: " fish ",
			sub:      "",
			stage:    "Final",
			want:     domain.Correction{FileID: "inbox/IMG_0000.jpg", Category: "fish", Stage: "final"},
		},
		{
			name:     "blank category",
			category: "   ",
			stage:    "final",
			wantErr:  errCategoryRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCorrectionForm()
			f.Load(reviewItems(1)[0])
			f.SetValue(fieldCategory, tt.category)
			f.SetValue(fieldSubcategory, tt.sub)
			f.SetValue(fieldStage, tt.stage)

			got, err := f.Correction()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, expected %+v", got, tt.want)
			}
		})
	}
}

func TestCorrectionForm_TabCyclesFields(t *testing.T) {
	f := NewCorrectionForm()
	f.Load(reviewItems(1)[0])

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, fieldSubcategory},
		{tea.KeyMsg{Type: tea.KeyTab}, fieldStage},
		{tea.KeyMsg{Type: tea.KeyTab}, fieldCategory},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, fieldStage},
	}
	for i, s := range steps {
		f.Update(s.key)
		if f.focus != s.want {
			t.Fatalf("step %d: focus = %d, expected %d", i, f.focus, s.want)
		}
	}

	f.Update(keyRunes("x"))
	if got := f.Value(fieldStage); got != "detailedx" {
		t.Errorf("stage = %q, expected typing to reach the focused field", got)
	}
}
