package commands

import (
	"context"
	"fmt"

	"mediasort/internal/application/pipeline"
	"mediasort/internal/domain"
)

// ScanResult is the classification preview of a media root
type ScanResult struct {
	Moves    []*domain.MoveOperation
	Warnings []domain.ScanWarning
	Projects []*domain.Project
	Message  string
}

// ScanCommand scans and classifies without touching files or state
type ScanCommand struct {
	organizer Organizer
}

// NewScanCommand creates a new ScanCommand
func NewScanCommand(organizer Organizer) *ScanCommand {
	return &ScanCommand{organizer: organizer}
}

// Execute plans a dry run and returns its operations
func (c *ScanCommand) Execute(ctx context.Context) (*ScanResult, error) {
	plan, err := c.organizer.Plan(ctx, domain.RunModeDryRun)
	if err != nil {
		return nil, err
	}
	return newScanResult(plan), nil
}

func newScanResult(plan *pipeline.Plan) *ScanResult {
	run := plan.Run
	return &ScanResult{
		Moves:    run.Moves,
		Warnings: run.Warnings,
		Projects: plan.Projects,
		Message: fmt.Sprintf("Scanned %d files: %d to organize, %d in place, %d warnings",
			run.TotalFiles, run.Summary.Planned, run.Summary.Skipped, len(run.Warnings)),
	}
}
