package commands

import (
	"context"
	"fmt"

	"mediasort/internal/application"
	"mediasort/internal/application/pipeline"
	"mediasort/internal/domain"
)

// Organizer runs and plans organization runs
type Organizer interface {
	Run(ctx context.Context, mode domain.RunMode) (*domain.OrganizationRun, error)
	Plan(ctx context.Context, mode domain.RunMode) (*pipeline.Plan, error)
}

// OrganizeResult contains the result of an organization run
type OrganizeResult struct {
	Run     *domain.OrganizationRun
	Message string
}

// OrganizeCommand executes the pipeline in dry-run or commit mode
type OrganizeCommand struct {
	organizer Organizer
	Mode      string
}

// NewOrganizeCommand creates a new OrganizeCommand
func NewOrganizeCommand(organizer Organizer, mode string) *OrganizeCommand {
	return &OrganizeCommand{
		organizer: organizer,
		Mode:      mode,
	}
}

// Validate checks the requested mode
func (c *OrganizeCommand) Validate() error {
	_, err := application.ParseRunMode(c.Mode)
	return err
}

// Execute runs the pipeline. A cancelled run is returned together with the
// context error so callers can still report the partial log.
func (c *OrganizeCommand) Execute(ctx context.Context) (*OrganizeResult, error) {
	mode, err := application.ParseRunMode(c.Mode)
	if err != nil {
		return nil, err
	}

	run, err := c.organizer.Run(ctx, mode)
	if run == nil {
		return nil, err
	}

	result := &OrganizeResult{Run: run, Message: summarizeRun(run)}
	return result, err
}

func summarizeRun(run *domain.OrganizationRun) string {
	s := run.Summary
	if run.Mode == domain.RunModeDryRun {
		return fmt.Sprintf("Dry run %s: %d files, %d to move, %d already organized, %d failed",
			shortID(run.ID), run.TotalFiles, s.Planned, s.Skipped, s.Failed)
	}
	return fmt.Sprintf("Run %s: %d files, %d moved, %d skipped, %d failed",
		shortID(run.ID), run.TotalFiles, s.Moved, s.Skipped, s.Failed)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
