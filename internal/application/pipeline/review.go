package pipeline

import (
	"mediasort/internal/domain"
)

// reviewItem derives a file's review state for this run. Flags carry over
// from prev. organized marks a file that now sits at its canonical path.
func (e *Engine) reviewItem(op *domain.MoveOperation, prev *domain.ReviewItem, organized bool) domain.ReviewItem {
	cls := op.Classification
	item := domain.ReviewItem{
		FileID:              op.File.RelativePath,
		FilePath:            op.File.AbsolutePath,
		ProposedCategory:    cls.Category,
		ProposedSubcategory: cls.Subcategory,
		ProposedStage:       op.StageAssignment.Stage,
		Confidence:          cls.Confidence,
		UpdatedAt:           e.now(),
	}
	if prev != nil {
		item.Flagged = prev.Flagged
		item.FlagReason = prev.FlagReason
	}

	fallback := cls.Source == domain.SourceAuto && e.opts.Taxonomy.IsFallback(cls.Category)
	var next domain.ReviewState
	switch {
	case domain.NeedsReview(cls, e.opts.ReviewThreshold, item.Flagged, fallback):
		next = domain.ReviewPending
	case organized:
		next = domain.ReviewOrganized
	case cls.Source == domain.SourceOverride:
		next = domain.ReviewReviewed
	default:
		next = domain.ReviewAutoClassified
	}

	item.State = next
	if prev != nil && !reachable(prev.State, next, cls.Source) {
		item.State = prev.State
	}
	return item
}

// reachable reports whether one run can take a file from prev to next.
// A run may pass through AutoClassified, and through Reviewed only when an
// override decided the file.
func reachable(prev, next domain.ReviewState, source domain.ClassificationSource) bool {
	if domain.CanTransition(prev, next) {
		return true
	}
	via := domain.ReviewAutoClassified
	if source == domain.SourceOverride {
		via = domain.ReviewReviewed
	}
	return domain.CanTransition(prev, via) && domain.CanTransition(via, next)
}
