package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultReviewThreshold is the confidence below which a file needs review
const DefaultReviewThreshold = 0.5

// DefaultReviewBatchSize is the number of items per exported batch
const DefaultReviewBatchSize = 50

// ReviewState is a file's position in the review lifecycle
type ReviewState string

const (
	ReviewDiscovered     ReviewState = "discovered"
	ReviewAutoClassified ReviewState = "auto_classified"
	ReviewPending        ReviewState = "pending_review"
	ReviewReviewed       ReviewState = "reviewed"
	ReviewOrganized      ReviewState = "organized"
)

var reviewTransitions = map[ReviewState][]ReviewState{
	ReviewDiscovered:     {ReviewAutoClassified},
	ReviewAutoClassified: {ReviewPending, ReviewReviewed, ReviewOrganized},
	ReviewPending:        {ReviewReviewed},
	ReviewReviewed:       {ReviewPending, ReviewOrganized},
	// Organized files re-enter the pipeline on the next scan
	ReviewOrganized: {ReviewAutoClassified, ReviewPending, ReviewReviewed},
}

// ParseReviewState parses a persisted state name
func ParseReviewState(s string) (ReviewState, error) {
	state := ReviewState(strings.TrimSpace(s))
	if _, ok := reviewTransitions[state]; !ok {
		return "", fmt.Errorf("unknown review state %q", s)
	}
	return state, nil
}

// CanTransition reports whether a file may move from one state to another.
// Staying in the same state is always allowed.
func CanTransition(from, to ReviewState) bool {
	if from == to {
		return true
	}
	for _, next := range reviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NeedsReview decides whether an auto classification goes to PendingReview:
// low confidence, a user flag, or a landing in the fallback category.
func NeedsReview(cls Classification, threshold float64, flagged, fallback bool) bool {
	if cls.Source == SourceOverride {
		return flagged
	}
	return flagged || fallback || cls.Confidence < threshold
}

// ReviewItem is a file awaiting or past human judgment
type ReviewItem struct {
	FileID              string // Root-relative slash path
	FilePath            string // Absolute path
	ProposedCategory    string
	ProposedSubcategory string
	ProposedStage       Stage
	Confidence          float64
	State               ReviewState
	Flagged             bool
	FlagReason          string
	UpdatedAt           time.Time
}

// Correction is a reviewer's decision for one file
type Correction struct {
	FileID      string
	Category    string
	Subcategory string
	Stage       Stage
	Notes       string
}

// Validate checks the correction against the taxonomy and stage vocabulary.
// Categories outside the taxonomy are accepted; overrides win regardless.
func (c Correction) Validate(vocab StageVocabulary) error {
	if strings.TrimSpace(c.FileID) == "" {
		return fmt.Errorf("file id is required")
	}
	if Slugify(c.Category) == "" {
		return fmt.Errorf("%s: category is required", c.FileID)
	}
	if c.Stage != "" && !vocab.Has(c.Stage) {
		return fmt.Errorf("%s: unknown stage %q", c.FileID, c.Stage)
	}
	return nil
}

// Override converts the correction into a persistent override keyed by file id
func (c Correction) Override(now time.Time) Override {
	return Override{
		Key:         c.FileID,
		Category:    strings.TrimSpace(c.Category),
		Subcategory: strings.TrimSpace(c.Subcategory),
		Stage:       c.Stage,
		Notes:       c.Notes,
		CreatedAt:   now,
	}
}

// ChunkReviewItems splits items into batches of at most size
func ChunkReviewItems(items []ReviewItem, size int) [][]ReviewItem {
	if size <= 0 {
		size = DefaultReviewBatchSize
	}
	var batches [][]ReviewItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
