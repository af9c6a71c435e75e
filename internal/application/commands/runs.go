package commands

import (
	"context"
	"fmt"

	"mediasort/internal/application"
	"mediasort/internal/application/pipeline"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ListRunsCommand lists recorded runs, newest first
type ListRunsCommand struct {
	store ports.RunStore
	Limit int
}

// NewListRunsCommand creates a new ListRunsCommand. A limit of zero lists all runs.
func NewListRunsCommand(store ports.RunStore, limit int) *ListRunsCommand {
	return &ListRunsCommand{store: store, Limit: limit}
}

// Execute runs the list command
func (c *ListRunsCommand) Execute(ctx context.Context) ([]*domain.OrganizationRun, error) {
	return c.store.ListRuns(c.Limit)
}

// ShowRunCommand loads one run with its moves and errors
type ShowRunCommand struct {
	store ports.RunStore
	RunID string
}

// NewShowRunCommand creates a new ShowRunCommand
func NewShowRunCommand(store ports.RunStore, runID string) *ShowRunCommand {
	return &ShowRunCommand{store: store, RunID: runID}
}

// Execute runs the show command
func (c *ShowRunCommand) Execute(ctx context.Context) (*domain.OrganizationRun, error) {
	if err := application.ValidateRequired("runID", c.RunID); err != nil {
		return nil, err
	}
	run, err := c.store.GetRun(c.RunID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s: %w", c.RunID, application.ErrNotFound)
	}
	return run, nil
}

// Restorer rolls back committed runs
type Restorer interface {
	Restore(ctx context.Context, runID string) (*pipeline.RestoreResult, error)
}

// RestoreResult contains the outcome of a rollback
type RestoreResult struct {
	*pipeline.RestoreResult
	Message string
}

// RestoreCommand rolls a committed run back
type RestoreCommand struct {
	restorer Restorer
	RunID    string
}

// NewRestoreCommand creates a new RestoreCommand
func NewRestoreCommand(restorer Restorer, runID string) *RestoreCommand {
	return &RestoreCommand{restorer: restorer, RunID: runID}
}

// Validate checks the run id
func (c *RestoreCommand) Validate() error {
	return application.ValidateRequired("runID", c.RunID)
}

// Execute runs the restore command
func (c *RestoreCommand) Execute(ctx context.Context) (*RestoreResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res, err := c.restorer.Restore(ctx, c.RunID)
	if err != nil {
		return nil, err
	}
	return &RestoreResult{
		RestoreResult: res,
		Message: fmt.Sprintf("Restored run %s: %d renamed back, %d copied from backup, %d failed",
			shortID(res.RunID), res.Renamed, res.Copied, len(res.Failures)),
	}, nil
}
