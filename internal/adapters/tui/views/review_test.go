package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
)

type fakeReviewService struct {
	items     []domain.ReviewItem
	queueErr  error
	submitted []domain.Correction
	reject    map[string]bool
}

func (s *fakeReviewService) Queue(ctx context.Context) ([]domain.ReviewItem, error) {
	return s.items, s.queueErr
}

func (s *fakeReviewService) Submit(ctx context.Context, corrections []domain.Correction) (*commands.ImportCorrectionsResult, error) {
	result := &commands.ImportCorrectionsResult{}
	for _, c := range corrections {
		if s.reject[c.FileID] {
			result.Rejected = append(result.Rejected, fmt.Sprintf("%s: unknown stage %q", c.FileID, c.Stage))
			continue
		}
		s.submitted = append(s.submitted, c)
		result.Applied++
	}
	return result, nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func reviewItems(n int) []domain.ReviewItem {
	items := make([]domain.ReviewItem, n)
	for i := range n {
		items[i] = domain.ReviewItem{
			FileID:              fmt.Sprintf("inbox/IMG_%04d.jpg", i),
			ProposedCategory:    "birds",
			ProposedSubcategory: "raptors",
			ProposedStage:       "detailed",
			Confidence:          0.3,
			State:               domain.ReviewPending,
		}
	}
	return items
}

// loadedModel returns a model with the queue already delivered
func loadedModel(t *testing.T, svc *fakeReviewService) *ReviewModel {
	t.Helper()
	m := NewReviewModel(svc)
	msg := m.Reload()()
	m.Update(msg)
	if m.state != ReviewShowList {
		t.Fatalf("expected list state, got %v", m.state)
	}
	return m
}

// drain runs cmd and feeds its message back into the model
func drain(m *ReviewModel, cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	m.Update(msg)
	return msg
}

func TestReviewModel_LoadQueue(t *testing.T) {
	tests := []struct {
		name      string
		svc       *fakeReviewService
		wantState ReviewViewState
		wantItems int
	}{
		{name: "items", svc: &fakeReviewService{items: reviewItems(3)}, wantState: ReviewShowList, wantItems: 3},
		{name: "empty", svc: &fakeReviewService{}, wantState: ReviewShowList, wantItems: 0},
		{name: "error", svc: &fakeReviewService{queueErr: errors.New("database is locked")}, wantState: ReviewError, wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewReviewModel(tt.svc)
			if m.state != ReviewLoading {
				t.Fatalf("expected loading state, got %v", m.state)
			}
			m.Update(m.Reload()())

			if m.state != tt.wantState {
				t.Errorf("state = %v, expected %v", m.state, tt.wantState)
			}
			if m.Remaining() != tt.wantItems {
				t.Errorf("remaining = %d, expected %d", m.Remaining(), tt.wantItems)
			}
		})
	}
}

func TestReviewModel_AcceptProposal(t *testing.T) {
	svc := &fakeReviewService{items: reviewItems(3)}
	m := loadedModel(t, svc)

	m.Update(keyRunes("j"))
	_, cmd := m.Update(keyRunes("y"))
	msg := drain(m, cmd)

	if _, ok := msg.(ReviewSubmittedMsg); !ok {
		t.Fatalf("expected ReviewSubmittedMsg, got %T", msg)
	}
	if len(svc.submitted) != 1 {
		t.Fatalf("expected 1 correction, got %d", len(svc.submitted))
	}
	got := svc.submitted[0]
	if got.FileID != "inbox/IMG_0001.jpg" || got.Category != "birds" || got.Subcategory != "raptors" || got.Stage != "detailed" {
		t.Errorf("unexpected correction %+v", got)
	}
	if m.Remaining() != 2 {
		t.Errorf("remaining = %d, expected 2", m.Remaining())
	}
	if m.Accepted() != 1 {
		t.Errorf("accepted = %d, expected 1", m.Accepted())
	}
	if item, _ := m.queue.Current(); item.FileID != "inbox/IMG_0002.jpg" {
		t.Errorf("cursor on %s, expected the next file", item.FileID)
	}
}

func TestReviewModel_RejectedCorrectionStays(t *testing.T) {
	svc := &fakeReviewService{
		items:  reviewItems(2),
		reject: map[string]bool{"inbox/IMG_0000.jpg": true},
	}
	m := loadedModel(t, svc)

	_, cmd := m.Update(keyRunes("y"))
	drain(m, cmd)

	if m.Remaining() != 2 {
		t.Errorf("remaining = %d, expected rejected file to stay", m.Remaining())
	}
	if !m.Notice.Err {
		t.Error("expected error message for rejected correction")
	}
}

func TestReviewModel_EditCorrection(t *testing.T) {
	svc := &fakeReviewService{items: reviewItems(1)}
	m := loadedModel(t, svc)

	m.Update(keyRunes("e"))
	if m.state != ReviewEditing {
		t.Fatalf("expected editing state, got %v", m.state)
	}
	if m.form.Value(fieldCategory) != "birds" {
		t.Errorf("expected category prefilled, got %q", m.form.Value(fieldCategory))
	}

	m.form.SetValue(fieldCategory, "fish")
	m.form.SetValue(fieldSubcategory, "bass")
	m.form.SetValue(fieldStage, "Final")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(m, cmd)

	if len(svc.submitted) != 1 {
		t.Fatalf("expected 1 correction, got %d", len(svc.submitted))
	}
	got := svc.submitted[0]
	if got.Category != "fish" || got.Subcategory != "bass" || got.Stage != "final" {
		t.Errorf("unexpected correction %+v", got)
	}
	if m.state != ReviewShowList {
		t.Errorf("expected list state after save, got %v", m.state)
	}
}

func TestReviewModel_EditRequiresCategory(t *testing.T) {
	svc := &fakeReviewService{items: reviewItems(1)}
	m := loadedModel(t, svc)

	m.Update(keyRunes("e"))
	m.form.SetValue(fieldCategory, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("expected no submit without a category")
	}
	if m.state != ReviewEditing || !m.Notice.Err {
		t.Error("expected to stay in edit with an error")
	}
}

func TestReviewModel_SkipAndReviewSkipped(t *testing.T) {
	svc := &fakeReviewService{items: reviewItems(2)}
	m := loadedModel(t, svc)

	m.Update(keyRunes("n"))
	m.Update(keyRunes("n"))

	if m.Remaining() != 0 {
		t.Fatalf("remaining = %d, expected 0", m.Remaining())
	}
	if m.queue.SkippedCount() != 2 {
		t.Fatalf("skipped = %d, expected 2", m.queue.SkippedCount())
	}

	m.Update(keyRunes("r"))

	if !m.reviewMode {
		t.Error("expected review mode")
	}
	if m.Remaining() != 2 || m.queue.SkippedCount() != 0 {
		t.Errorf("expected skipped files back in the queue, remaining %d skipped %d", m.Remaining(), m.queue.SkippedCount())
	}
}

func TestReviewModel_AcceptPageAsksFirst(t *testing.T) {
	svc := &fakeReviewService{items: reviewItems(12)}
	m := loadedModel(t, svc)

	_, cmd := m.Update(keyRunes("A"))
	if cmd != nil || !m.confirm.Active() {
		t.Fatal("expected a pending confirmation")
	}

	_, cmd = m.Update(keyRunes("y"))
	msg := cmd()
	if _, ok := msg.(reviewBulkConfirmedMsg); !ok {
		t.Fatalf("expected reviewBulkConfirmedMsg, got %T", msg)
	}
	_, cmd = m.Update(msg)
	drain(m, cmd)

	if len(svc.submitted) != 10 {
		t.Errorf("expected one page of corrections, got %d", len(svc.submitted))
	}
	if m.Remaining() != 2 {
		t.Errorf("remaining = %d, expected 2", m.Remaining())
	}
}

func TestReviewModel_AcceptPageCancelled(t *testing.T) {
	svc := &fakeReviewService{items: reviewItems(3)}
	m := loadedModel(t, svc)

	m.Update(keyRunes("A"))
	_, cmd := m.Update(keyRunes("n"))
	drain(m, cmd)

	if m.confirm.Active() {
		t.Error("expected confirmation to close")
	}
	if len(svc.submitted) != 0 || m.Remaining() != 3 {
		t.Error("expected nothing submitted after cancel")
	}
}

func TestReviewModel_Keys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want tea.Msg
	}{
		{name: "quit", key: keyRunes("q"), want: ReviewDoneMsg{}},
		{name: "help", key: keyRunes("?"), want: SwitchToHelpMsg{}},
		{name: "open", key: keyRunes("o"), want: OpenViewerMsg{Path: "/media/inbox/IMG_0000.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := reviewItems(1)
			items[0].FilePath = "/media/inbox/IMG_0000.jpg"
			m := loadedModel(t, &fakeReviewService{items: items})

			_, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("got %#v, expected %#v", got, tt.want)
			}
		})
	}
}

func TestReviewModel_View(t *testing.T) {
	items := reviewItems(1)
	items[0].Flagged = true
	items[0].FlagReason = "blurry"
	m := loadedModel(t, &fakeReviewService{items: items})

	view := m.View()
	for _, want := range []string{"Review Queue", "inbox/IMG_0000.jpg", "birds/raptors · detailed", "30%", "blurry"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestProposalLabel(t *testing.T) {
	tests := []struct {
		name string
		item domain.ReviewItem
		want string
	}{
		{
			name: "full",
			item: domain.ReviewItem{ProposedCategory: "birds", ProposedSubcategory: "raptors", ProposedStage: "final"},
			want: "birds/raptors · final",
		},
		{
			name: "default subcategory hidden",
			item: domain.ReviewItem{ProposedCategory: "misc", ProposedSubcategory: domain.DefaultSubcategory, ProposedStage: "detailed"},
			want: "misc · detailed",
		},
		{
			name: "no stage",
			item: domain.ReviewItem{ProposedCategory: "fish"},
			want: "fish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := proposalLabel(tt.item); got != tt.want {
				t.Errorf("proposalLabel() = %q, expected %q", got, tt.want)
			}
		})
	}
}
