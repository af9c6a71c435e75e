package domain

import "time"

// RunMode selects whether a run touches the filesystem
type RunMode string

const (
	RunModeDryRun RunMode = "dry-run"
	RunModeCommit RunMode = "commit"
)

// Valid reports whether m is a known mode
func (m RunMode) Valid() bool {
	return m == RunModeDryRun || m == RunModeCommit
}

// MoveStatus is the lifecycle of one planned move
type MoveStatus string

const (
	MoveStatusPlanned MoveStatus = "planned"
	MoveStatusMoved   MoveStatus = "moved"
	MoveStatusFailed  MoveStatus = "failed"
	MoveStatusSkipped MoveStatus = "skipped"
)

// MoveOperation is one file's planned relocation inside a run
type MoveOperation struct {
	File              MediaFile
	Classification    Classification
	StageAssignment   StageAssignment
	TargetCategory    string
	TargetSubcategory string
	TargetStage       Stage
	Kind              CategoryKind
	SequenceNumber    int
	NewFileName       string
	TargetPath        string // Root-relative, slash-separated
	Status            MoveStatus
	Reason            string
}

// RunError is a per-file failure recorded in a run
type RunError struct {
	File   string
	Reason string
}

// ScanWarning is a non-fatal scan problem, such as an unreadable directory
type ScanWarning struct {
	Path   string
	Reason string
}

// RunSummary aggregates a run for the log
type RunSummary struct {
	CategoryBreakdown map[string]int
	StageBreakdown    map[string]int
	Planned           int
	Moved             int
	Skipped           int
	Failed            int
	Covers            map[string]string // Category -> root-relative cover path
}

// OrganizationRun is the audit record of one pipeline execution.
// Moves and Errors are append-only once the run starts.
type OrganizationRun struct {
	ID             string
	Root           string
	Timestamp      time.Time
	Mode           RunMode
	TotalFiles     int
	ProcessedFiles int
	Moves          []*MoveOperation
	Errors         []RunError
	Warnings       []ScanWarning
	BackupLocation string
	Summary        RunSummary
}

// NewOrganizationRun starts a run record
func NewOrganizationRun(id, root string, mode RunMode, now time.Time) *OrganizationRun {
	return &OrganizationRun{
		ID:        id,
		Root:      root,
		Timestamp: now,
		Mode:      mode,
	}
}

// AddError records a per-file failure
func (r *OrganizationRun) AddError(file, reason string) {
	r.Errors = append(r.Errors, RunError{File: file, Reason: reason})
}

// Summarize recomputes Summary and ProcessedFiles from Moves
func (r *OrganizationRun) Summarize(covers map[string]string) {
	s := RunSummary{
		CategoryBreakdown: make(map[string]int),
		StageBreakdown:    make(map[string]int),
		Covers:            covers,
	}
	processed := 0
	for _, op := range r.Moves {
		s.CategoryBreakdown[op.TargetCategory]++
		s.StageBreakdown[string(op.TargetStage)]++
		switch op.Status {
		case MoveStatusPlanned:
			s.Planned++
		case MoveStatusMoved:
			s.Moved++
		case MoveStatusSkipped:
			s.Skipped++
		case MoveStatusFailed:
			s.Failed++
		}
		if op.Reason != ReasonCancelled {
			processed++
		}
	}
	if s.Covers == nil {
		s.Covers = make(map[string]string)
	}
	r.ProcessedFiles = processed
	r.Summary = s
}

// MovedOperations returns the operations that changed the tree
func (r *OrganizationRun) MovedOperations() []*MoveOperation {
	var out []*MoveOperation
	for _, op := range r.Moves {
		if op.Status == MoveStatusMoved {
			out = append(out, op)
		}
	}
	return out
}

// ReasonCancelled marks operations left untouched by a cancelled run
const ReasonCancelled = "run cancelled"

// ReasonAlreadyOrganized marks files found at their canonical location
const ReasonAlreadyOrganized = "already organized"

