package commands

import (
	"context"
	"fmt"
	"time"

	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ListReviewCommand lists review items, optionally filtered by state
type ListReviewCommand struct {
	store  ports.ReviewStore
	States []domain.ReviewState
}

// NewListReviewCommand creates a new ListReviewCommand
func NewListReviewCommand(store ports.ReviewStore, states ...domain.ReviewState) *ListReviewCommand {
	return &ListReviewCommand{store: store, States: states}
}

// Execute runs the list command
func (c *ListReviewCommand) Execute(ctx context.Context) ([]domain.ReviewItem, error) {
	return c.store.ListReviewItems(c.States...)
}

// ExportReviewResult contains the exported batches
type ExportReviewResult struct {
	Batches [][]domain.ReviewItem
	Paths   []string
	Message string
}

// ExportReviewCommand chunks pending review items into batches and hands
// them to an exporter when one is set
type ExportReviewCommand struct {
	store     ports.ReviewStore
	exporter  ports.ReviewExporter
	BatchSize int
}

// NewExportReviewCommand creates a new ExportReviewCommand. exporter may be nil.
func NewExportReviewCommand(store ports.ReviewStore, exporter ports.ReviewExporter, batchSize int) *ExportReviewCommand {
	return &ExportReviewCommand{
		store:     store,
		exporter:  exporter,
		BatchSize: batchSize,
	}
}

// Validate checks the batch size
func (c *ExportReviewCommand) Validate() error {
	if c.BatchSize < 0 {
		return &application.ValidationError{
			Field:   "batchSize",
			Message: "must not be negative",
		}
	}
	return nil
}

// Execute runs the export command
func (c *ExportReviewCommand) Execute(ctx context.Context) (*ExportReviewResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	items, err := c.store.ListReviewItems(domain.ReviewPending)
	if err != nil {
		return nil, fmt.Errorf("failed to load review queue: %w", err)
	}
	batches := domain.ChunkReviewItems(items, c.BatchSize)

	result := &ExportReviewResult{Batches: batches}
	if c.exporter != nil && len(batches) > 0 {
		paths, err := c.exporter.ExportReview(batches)
		if err != nil {
			return nil, fmt.Errorf("failed to export review batches: %w", err)
		}
		result.Paths = paths
	}
	result.Message = fmt.Sprintf("Exported %d pending items in %d batches", len(items), len(batches))
	return result, nil
}

// ImportCorrectionsResult reports how the corrections were applied
type ImportCorrectionsResult struct {
	Applied   int
	Unchanged int
	Rejected  []string
	Message   string
}

// ImportCorrectionsCommand turns reviewer corrections into overrides and
// marks the corrected files Reviewed. Re-importing the same corrections
// changes nothing.
type ImportCorrectionsCommand struct {
	state       ports.StateStore
	vocab       domain.StageVocabulary
	now         func() time.Time
	Corrections []domain.Correction
}

// NewImportCorrectionsCommand creates a new ImportCorrectionsCommand
func NewImportCorrectionsCommand(state ports.StateStore, vocab domain.StageVocabulary, corrections []domain.Correction) *ImportCorrectionsCommand {
	return &ImportCorrectionsCommand{
		state:       state,
		vocab:       vocab,
		now:         time.Now,
		Corrections: corrections,
	}
}

// Validate checks that there is something to import
func (c *ImportCorrectionsCommand) Validate() error {
	if len(c.Corrections) == 0 {
		return &application.ValidationError{
			Field:   "corrections",
			Message: "no corrections to import",
		}
	}
	return nil
}

// Execute applies every valid correction in one transaction. Invalid
// entries are reported and skipped.
func (c *ImportCorrectionsCommand) Execute(ctx context.Context) (*ImportCorrectionsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	result := &ImportCorrectionsResult{}
	now := c.now()

	tx, err := c.state.BeginTx()
	if err != nil {
		return nil, err
	}
	for _, corr := range c.Corrections {
		if err := corr.Validate(c.vocab); err != nil {
			result.Rejected = append(result.Rejected, err.Error())
			continue
		}
		if err := application.ValidateFileID("fileId", corr.FileID); err != nil {
			result.Rejected = append(result.Rejected, fmt.Sprintf("%s: %v", corr.FileID, err))
			continue
		}

		applied, err := c.apply(tx, corr, now)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to apply correction for %s: %w", corr.FileID, err)
		}
		if applied {
			result.Applied++
		} else {
			result.Unchanged++
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Applied %d corrections (%d unchanged, %d rejected)",
		result.Applied, result.Unchanged, len(result.Rejected))
	return result, nil
}

func (c *ImportCorrectionsCommand) apply(tx ports.StateTx, corr domain.Correction, now time.Time) (bool, error) {
	override := corr.Override(now)

	existing, err := c.state.GetOverride(override.Key)
	if err != nil {
		return false, err
	}
	item, err := c.state.GetReviewItem(corr.FileID)
	if err != nil {
		return false, err
	}

	settled := item == nil ||
		(!item.Flagged && (item.State == domain.ReviewReviewed || item.State == domain.ReviewOrganized))
	if existing != nil && existing.SameAs(override) && settled {
		return false, nil
	}

	if existing == nil || !existing.SameAs(override) {
		if existing != nil {
			override.CreatedAt = existing.CreatedAt
		}
		if err := tx.UpsertOverride(override); err != nil {
			return false, err
		}
	}

	if item != nil {
		item.ProposedCategory = override.Category
		item.ProposedSubcategory = override.Classification().Subcategory
		if override.Stage != "" {
			item.ProposedStage = override.Stage
		}
		item.Confidence = 1
		item.Flagged = false
		item.FlagReason = ""
		if domain.CanTransition(item.State, domain.ReviewReviewed) {
			item.State = domain.ReviewReviewed
		}
		item.UpdatedAt = now
		if err := tx.UpsertReviewItem(*item); err != nil {
			return false, err
		}
	}
	return true, nil
}

// FlagFileResult contains the updated review item
type FlagFileResult struct {
	Item    *domain.ReviewItem
	Message string
}

// FlagFileCommand flags a file for review, or clears its flag
type FlagFileCommand struct {
	state  ports.StateStore
	now    func() time.Time
	FileID string
	Reason string
	Clear  bool
}

// NewFlagFileCommand creates a new FlagFileCommand
func NewFlagFileCommand(state ports.StateStore, fileID, reason string, clear bool) *FlagFileCommand {
	return &FlagFileCommand{
		state:  state,
		now:    time.Now,
		FileID: fileID,
		Reason: reason,
		Clear:  clear,
	}
}

// Validate checks the file id
func (c *FlagFileCommand) Validate() error {
	return application.ValidateFileID("fileId", c.FileID)
}

// Execute runs the flag command. Flagging moves the file to PendingReview;
// clearing leaves the state for the next run to recompute.
func (c *FlagFileCommand) Execute(ctx context.Context) (*FlagFileResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	item, err := c.state.GetReviewItem(c.FileID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("review item %s: %w", c.FileID, application.ErrNotFound)
	}

	message := fmt.Sprintf("Flagged %s", c.FileID)
	if c.Clear {
		item.Flagged = false
		item.FlagReason = ""
		message = fmt.Sprintf("Cleared flag on %s", c.FileID)
	} else {
		item.Flagged = true
		item.FlagReason = c.Reason
		if domain.CanTransition(item.State, domain.ReviewPending) {
			item.State = domain.ReviewPending
		}
	}
	item.UpdatedAt = c.now()

	tx, err := c.state.BeginTx()
	if err != nil {
		return nil, err
	}
	if err := tx.UpsertReviewItem(*item); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save review item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &FlagFileResult{Item: item, Message: message}, nil
}
