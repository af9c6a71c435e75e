package jsonfile

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// RunLog is the JSON document written for every run
type RunLog struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Mode           string        `json:"mode"`
	Root           string        `json:"root"`
	TotalFiles     int           `json:"totalFiles"`
	ProcessedFiles int           `json:"processedFiles"`
	BackupLocation string        `json:"backupLocation,omitempty"`
	Errors         []RunLogError `json:"errors"`
	Warnings       []RunLogError `json:"warnings"`
	Moves          []RunLogMove  `json:"moves"`
	Summary        RunLogSummary `json:"summary"`
}

// RunLogError is one per-file error or scan warning
type RunLogError struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// RunLogMove is one planned or executed move
type RunLogMove struct {
	OldPath     string   `json:"oldPath"`
	NewPath     string   `json:"newPath"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Stage       string   `json:"stage"`
	Sequence    int      `json:"sequence"`
	Status      string   `json:"status"`
	Reason      string   `json:"reason,omitempty"`
	Confidence  float64  `json:"confidence"`
	Source      string   `json:"source"`
	Signals     []string `json:"signals,omitempty"`
}

// RunLogSummary aggregates the run
type RunLogSummary struct {
	CategoryBreakdown map[string]int    `json:"categoryBreakdown"`
	StageBreakdown    map[string]int    `json:"stageBreakdown"`
	Planned           int               `json:"planned"`
	Moved             int               `json:"moved"`
	Skipped           int               `json:"skipped"`
	Failed            int               `json:"failed"`
	Covers            map[string]string `json:"covers"`
}

// NewRunLog converts a run into its log document
func NewRunLog(run *domain.OrganizationRun) RunLog {
	doc := RunLog{
		ID:             run.ID,
		Timestamp:      run.Timestamp.UTC(),
		Mode:           string(run.Mode),
		Root:           run.Root,
		TotalFiles:     run.TotalFiles,
		ProcessedFiles: run.ProcessedFiles,
		BackupLocation: run.BackupLocation,
		Errors:         make([]RunLogError, 0, len(run.Errors)),
		Warnings:       make([]RunLogError, 0, len(run.Warnings)),
		Moves:          make([]RunLogMove, 0, len(run.Moves)),
		Summary: RunLogSummary{
			CategoryBreakdown: nonNilCounts(run.Summary.CategoryBreakdown),
			StageBreakdown:    nonNilCounts(run.Summary.StageBreakdown),
			Planned:           run.Summary.Planned,
			Moved:             run.Summary.Moved,
			Skipped:           run.Summary.Skipped,
			Failed:            run.Summary.Failed,
			Covers:            run.Summary.Covers,
		},
	}
	if doc.Summary.Covers == nil {
		doc.Summary.Covers = map[string]string{}
	}
	for _, e := range run.Errors {
		doc.Errors = append(doc.Errors, RunLogError{File: e.File, Reason: e.Reason})
	}
	for _, w := range run.Warnings {
		doc.Warnings = append(doc.Warnings, RunLogError{File: w.Path, Reason: w.Reason})
	}
	for _, op := range run.Moves {
		doc.Moves = append(doc.Moves, RunLogMove{
			OldPath:     op.File.RelativePath,
			NewPath:     op.TargetPath,
			Category:    op.TargetCategory,
			Subcategory: op.TargetSubcategory,
			Stage:       string(op.TargetStage),
			Sequence:    op.SequenceNumber,
			Status:      string(op.Status),
			Reason:      op.Reason,
			Confidence:  op.Classification.Confidence,
			Source:      string(op.Classification.Source),
			Signals:     op.Classification.MatchedSignals,
		})
	}
	return doc
}

func nonNilCounts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

// EncodeRunLog writes the run log to w
func EncodeRunLog(w io.Writer, run *domain.OrganizationRun) error {
	return encode(w, NewRunLog(run))
}

// RunLogWriter stores run logs under a directory
type RunLogWriter struct {
	dir string
}

var _ ports.RunLogWriter = (*RunLogWriter)(nil)

// NewRunLogWriter creates a writer storing logs in dir
func NewRunLogWriter(dir string) *RunLogWriter {
	return &RunLogWriter{dir: dir}
}

// WriteRunLog writes <dir>/<timestamp>-<id>.json and returns its path
func (w *RunLogWriter) WriteRunLog(run *domain.OrganizationRun) (string, error) {
	name := fmt.Sprintf("%s-%s.json", run.Timestamp.UTC().Format("20060102-150405"), run.ID)
	path := filepath.Join(w.dir, name)
	if err := writeAtomic(path, NewRunLog(run)); err != nil {
		return "", fmt.Errorf("write run log: %w", err)
	}
	return path, nil
}
