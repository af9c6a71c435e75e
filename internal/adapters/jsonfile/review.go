package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ReviewBatch is one exported chunk of pending review items
type ReviewBatch struct {
	Batch   int               `json:"batch"`
	Batches int               `json:"batches"`
	Items   []ReviewBatchItem `json:"items"`
}

// ReviewBatchItem is one file awaiting a reviewer's decision
type ReviewBatchItem struct {
	FileID              string  `json:"fileId"`
	FilePath            string  `json:"filePath"`
	ProposedCategory    string  `json:"proposedCategory"`
	ProposedSubcategory string  `json:"proposedSubcategory,omitempty"`
	ProposedStage       string  `json:"proposedStage"`
	Confidence          float64 `json:"confidence"`
	Flagged             bool    `json:"flagged,omitempty"`
	FlagReason          string  `json:"flagReason,omitempty"`
}

// NewReviewBatches converts chunked review items into documents
func NewReviewBatches(chunks [][]domain.ReviewItem) []ReviewBatch {
	out := make([]ReviewBatch, len(chunks))
	for i, chunk := range chunks {
		items := make([]ReviewBatchItem, len(chunk))
		for j, item := range chunk {
			items[j] = ReviewBatchItem{
				FileID:              item.FileID,
				FilePath:            item.FilePath,
				ProposedCategory:    item.ProposedCategory,
				ProposedSubcategory: item.ProposedSubcategory,
				ProposedStage:       string(item.ProposedStage),
				Confidence:          item.Confidence,
				Flagged:             item.Flagged,
				FlagReason:          item.FlagReason,
			}
		}
		out[i] = ReviewBatch{Batch: i + 1, Batches: len(chunks), Items: items}
	}
	return out
}

// WriteReviewBatches writes review-batch-NNN.json files into dir and
// returns their paths in order
func WriteReviewBatches(dir string, chunks [][]domain.ReviewItem) ([]string, error) {
	var paths []string
	for _, batch := range NewReviewBatches(chunks) {
		path := filepath.Join(dir, fmt.Sprintf("review-batch-%03d.json", batch.Batch))
		if err := writeAtomic(path, batch); err != nil {
			return paths, fmt.Errorf("write review batch %d: %w", batch.Batch, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CorrectionEntry is the reviewer's decision for one file
type CorrectionEntry struct {
	FileID      string `json:"fileId,omitempty"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// DecodeCorrections reads reviewer corrections. The document is either an
// object mapping fileId to a decision or an array of decisions carrying
// their fileId. Results are ordered by file id.
func DecodeCorrections(r io.Reader) ([]domain.Correction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("corrections document is empty")
	}

	var entries []CorrectionEntry
	switch data[0] {
	case '{':
		var byID map[string]CorrectionEntry
		if err := json.Unmarshal(data, &byID); err != nil {
			return nil, fmt.Errorf("parse corrections: %w", err)
		}
		for id, entry := range byID {
			entry.FileID = id
			entries = append(entries, entry)
		}
	case '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse corrections: %w", err)
		}
	default:
		return nil, errors.New("parse corrections: expected a JSON object or array")
	}

	out := make([]domain.Correction, 0, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.FileID)
		if id == "" {
			return nil, fmt.Errorf("correction %d: fileId is required", i+1)
		}
		out = append(out, domain.Correction{
			FileID:      id,
			Category:    strings.TrimSpace(e.Category),
			Subcategory: strings.TrimSpace(e.Subcategory),
			Stage:       domain.Stage(strings.ToLower(strings.TrimSpace(e.Stage))),
			Notes:       strings.TrimSpace(e.Notes),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out, nil
}

// ReviewDir exports review batches as files in one directory
type ReviewDir struct {
	dir string
}

var _ ports.ReviewExporter = (*ReviewDir)(nil)

func NewReviewDir(dir string) *ReviewDir {
	return &ReviewDir{dir: dir}
}

func (r *ReviewDir) ExportReview(batches [][]domain.ReviewItem) ([]string, error) {
	return WriteReviewBatches(r.dir, batches)
}
