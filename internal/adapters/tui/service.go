package tui

import (
	"context"

	"mediasort/internal/adapters/tui/views"
	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ReviewService backs the review view with the pipeline state store
type ReviewService struct {
	state ports.StateStore
	vocab domain.StageVocabulary
}

var _ views.ReviewService = (*ReviewService)(nil)

// NewReviewService creates a review service over an open state store
func NewReviewService(state ports.StateStore, vocab domain.StageVocabulary) *ReviewService {
	return &ReviewService{state: state, vocab: vocab}
}

// Queue returns the files waiting for a decision
func (s *ReviewService) Queue(ctx context.Context) ([]domain.ReviewItem, error) {
	return commands.NewListReviewCommand(s.state, domain.ReviewPending).Execute(ctx)
}

// Submit records the given decisions as overrides
func (s *ReviewService) Submit(ctx context.Context, corrections []domain.Correction) (*commands.ImportCorrectionsResult, error) {
	return commands.NewImportCorrectionsCommand(s.state, s.vocab, corrections).Execute(ctx)
}
