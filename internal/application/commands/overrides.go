package commands

import (
	"context"
	"fmt"

	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ListOverridesCommand lists every stored override
type ListOverridesCommand struct {
	store ports.OverrideStore
}

// NewListOverridesCommand creates a new ListOverridesCommand
func NewListOverridesCommand(store ports.OverrideStore) *ListOverridesCommand {
	return &ListOverridesCommand{store: store}
}

// Execute runs the list command
func (c *ListOverridesCommand) Execute(ctx context.Context) ([]domain.Override, error) {
	return c.store.ListOverrides()
}

// ImportPlanResult reports how a prior plan was imported
type ImportPlanResult struct {
	Imported  int
	Unchanged int
	Message   string
}

// ImportPlanCommand stores the entries of a prior-run plan as overrides
type ImportPlanCommand struct {
	state     ports.StateStore
	vocab     domain.StageVocabulary
	Overrides []domain.Override
}

// NewImportPlanCommand creates a new ImportPlanCommand
func NewImportPlanCommand(state ports.StateStore, vocab domain.StageVocabulary, overrides []domain.Override) *ImportPlanCommand {
	return &ImportPlanCommand{state: state, vocab: vocab, Overrides: overrides}
}

// Validate checks every entry for a key, a category and a known stage
func (c *ImportPlanCommand) Validate() error {
	if len(c.Overrides) == 0 {
		return &application.ValidationError{
			Field:   "plan",
			Message: "plan has no entries",
		}
	}
	for i, o := range c.Overrides {
		if err := application.ValidateRequired("key", o.Key); err != nil {
			return &application.ValidationError{Field: fmt.Sprintf("plan[%d]", i), Message: err.Error()}
		}
		if domain.Slugify(o.Category) == "" {
			return &application.ValidationError{Field: fmt.Sprintf("plan[%d]", i), Message: "category is required"}
		}
		if o.Stage != "" && !c.vocab.Has(o.Stage) {
			return &application.ValidationError{
				Field:   fmt.Sprintf("plan[%d]", i),
				Message: fmt.Sprintf("unknown stage %q", o.Stage),
			}
		}
	}
	return nil
}

// Execute upserts the plan's overrides in one transaction
func (c *ImportPlanCommand) Execute(ctx context.Context) (*ImportPlanResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	existing, err := c.state.ListOverrides()
	if err != nil {
		return nil, err
	}
	current := domain.NewOverrideSet(existing)

	result := &ImportPlanResult{}
	tx, err := c.state.BeginTx()
	if err != nil {
		return nil, err
	}
	for _, o := range c.Overrides {
		if prev, ok := current[o.Key]; ok && prev.SameAs(o) {
			result.Unchanged++
			continue
		}
		if err := tx.UpsertOverride(o); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to store override %s: %w", o.Key, err)
		}
		current[o.Key] = o
		result.Imported++
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Imported %d overrides (%d unchanged)", result.Imported, result.Unchanged)
	return result, nil
}
