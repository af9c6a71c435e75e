package domain

import (
	"fmt"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from ReviewState
		to   ReviewState
		want bool
	}{
		{ReviewDiscovered, ReviewAutoClassified, true},
		{ReviewDiscovered, ReviewOrganized, false},
		{ReviewAutoClassified, ReviewPending, true},
		{ReviewAutoClassified, ReviewOrganized, true},
		{ReviewPending, ReviewReviewed, true},
		{ReviewPending, ReviewOrganized, false},
		{ReviewReviewed, ReviewOrganized, true},
		{ReviewReviewed, ReviewReviewed, true},
		{ReviewOrganized, ReviewAutoClassified, true},
		{ReviewOrganized, ReviewDiscovered, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNeedsReview(t *testing.T) {
	tests := []struct {
		name     string
		cls      Classification
		flagged  bool
		fallback bool
		want     bool
	}{
		{name: "confident", cls: Classification{Confidence: 0.7, Source: SourceAuto}, want: false},
		{name: "at threshold", cls: Classification{Confidence: 0.5, Source: SourceAuto}, want: false},
		{name: "below threshold", cls: Classification{Confidence: 0.4, Source: SourceAuto}, want: true},
		{name: "flagged", cls: Classification{Confidence: 0.9, Source: SourceAuto}, flagged: true, want: true},
		{name: "fallback", cls: Classification{Confidence: 0.9, Source: SourceAuto}, fallback: true, want: true},
		{name: "override", cls: Classification{Confidence: 0, Source: SourceOverride}, fallback: true, want: false},
		{name: "flagged override", cls: Classification{Source: SourceOverride}, flagged: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsReview(tt.cls, DefaultReviewThreshold, tt.flagged, tt.fallback); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestChunkReviewItems(t *testing.T) {
	items := make([]ReviewItem, 120)
	for i := range items {
		items[i].FileID = fmt.Sprintf("f%03d.jpg", i)
	}

	batches := ChunkReviewItems(items, 50)

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 50 || len(batches[1]) != 50 || len(batches[2]) != 20 {
		t.Errorf("unexpected batch sizes %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
	if batches[2][0].FileID != "f100.jpg" {
		t.Errorf("expected third batch to start at f100.jpg, got %s", batches[2][0].FileID)
	}
	if got := ChunkReviewItems(nil, 50); len(got) != 0 {
		t.Errorf("expected no batches for empty input, got %d", len(got))
	}
}

func TestCorrectionValidate(t *testing.T) {
	vocab := DefaultStageVocabulary()

	tests := []struct {
		name    string
		c       Correction
		wantErr bool
	}{
		{name: "valid", c: Correction{FileID: "a.jpg", Category: "birds", Stage: StageFinal}, wantErr: false},
		{name: "stage optional", c: Correction{FileID: "a.jpg", Category: "birds"}, wantErr: false},
		{name: "missing file id", c: Correction{Category: "birds"}, wantErr: true},
		{name: "missing category", c: Correction{FileID: "a.jpg"}, wantErr: true},
		{name: "unknown stage", c: Correction{FileID: "a.jpg", Category: "birds", Stage: "glazed"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate(vocab)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
