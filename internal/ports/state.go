package ports

import "mediasort/internal/domain"

// OverrideStore reads persistent manual classifications
type OverrideStore interface {
	ListOverrides() ([]domain.Override, error)
	GetOverride(key string) (*domain.Override, error)
}

// ReviewStore reads per-file review state
type ReviewStore interface {
	GetReviewItem(fileID string) (*domain.ReviewItem, error)
	ListReviewItems(states ...domain.ReviewState) ([]domain.ReviewItem, error)
	ListHistory(fileID string) ([]domain.HistoryEntry, error)
}

// RunStore reads recorded organization runs
type RunStore interface {
	// ListRuns returns runs newest first, without their moves
	ListRuns(limit int) ([]*domain.OrganizationRun, error)
	// GetRun returns a run with its moves and errors
	GetRun(id string) (*domain.OrganizationRun, error)
}

// StateStore is the persistent pipeline state for one media root
type StateStore interface {
	// Lifecycle
	Open(root string) error
	Close() error

	OverrideStore
	ReviewStore
	RunStore

	// Batch updates
	BeginTx() (StateTx, error)
}

// StateTx groups state updates that must land together
type StateTx interface {
	// Overrides
	UpsertOverride(o domain.Override) error
	RekeyOverride(oldKey, newKey string) error

	// Review state
	UpsertReviewItem(item domain.ReviewItem) error
	RenameReviewItem(oldID, newID string) error

	// Audit
	InsertHistory(entry domain.HistoryEntry) error
	SaveRun(run *domain.OrganizationRun) error

	// Transaction control
	Commit() error
	Rollback() error
}
