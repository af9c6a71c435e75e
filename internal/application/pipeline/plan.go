package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/logging"
)

// Plan is a run before execution together with the state it derives from
type Plan struct {
	Run       *domain.OrganizationRun
	Overrides domain.OverrideSet
	Reviews   map[string]domain.ReviewItem // Keyed by the file's pre-move id
	Projects  []*domain.Project
}

// Plan scans the root, classifies every file and assigns target paths.
// Nothing is written.
func (e *Engine) Plan(ctx context.Context, mode domain.RunMode) (*Plan, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%q: %w", mode, application.ErrInvalidMode)
	}

	scan, err := e.deps.Scanner.Scan(ctx, e.opts.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", e.opts.Root, application.ErrRootNotFound)
		}
		return nil, fmt.Errorf("scan: %w", err)
	}

	overrideList, err := e.deps.State.ListOverrides()
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	overrides := domain.NewOverrideSet(overrideList)

	previous, err := e.deps.State.ListReviewItems()
	if err != nil {
		return nil, fmt.Errorf("load review state: %w", err)
	}
	prevByID := make(map[string]domain.ReviewItem, len(previous))
	for _, item := range previous {
		prevByID[item.FileID] = item
	}

	now := e.now()
	run := domain.NewOrganizationRun(e.newID(), e.opts.Root, mode, now)
	run.TotalFiles = len(scan.Files)
	run.Warnings = scan.Warnings

	for _, f := range scan.Files {
		cls, stage := e.classify(f, overrides)
		op := e.opts.Layout.PlanMove(f, cls, stage, e.opts.Taxonomy.KindOf(cls.Category))
		run.Moves = append(run.Moves, op)
	}

	e.opts.Layout.AssignSequences(run.Moves, e.deps.Executor.Exists, e.opts.MaxSequenceAttempts)

	reviews := make(map[string]domain.ReviewItem, len(run.Moves))
	for _, op := range run.Moves {
		var prev *domain.ReviewItem
		if item, ok := prevByID[op.File.RelativePath]; ok {
			prev = &item
		}
		reviews[op.File.RelativePath] = e.reviewItem(op, prev, op.Status == domain.MoveStatusSkipped)

		if op.Status == domain.MoveStatusFailed {
			run.AddError(op.File.RelativePath, (&application.MoveError{
				File:   op.File.RelativePath,
				Reason: op.Reason,
				Kind:   application.MoveErrorCollision,
			}).Error())
		}
	}

	projects := domain.BuildProjects(domain.CategorizedFromOperations(run.Moves), e.opts.Stages, e.opts.CoverSizes)
	run.Summarize(domain.CoverPaths(projects))

	return &Plan{Run: run, Overrides: overrides, Reviews: reviews, Projects: projects}, nil
}

// classify resolves a file's category and stage. Overrides win, then the
// canonical location, then signal scoring.
func (e *Engine) classify(f domain.MediaFile, overrides domain.OverrideSet) (domain.Classification, domain.StageAssignment) {
	locCls, locStage, placed := e.opts.Layout.ClassifyLocation(f, e.opts.Taxonomy, e.opts.Stages)

	if o, ok := overrides.Lookup(f); ok {
		cls := o.Classification()
		cls.Category = e.opts.Taxonomy.CanonicalName(cls.Category)
		switch {
		case o.Stage != "" && e.opts.Stages.Has(o.Stage):
			return cls, domain.StageAssignment{
				Stage:           o.Stage,
				Confidence:      1,
				MatchedKeywords: []string{domain.SignalOverride},
			}
		case placed:
			return cls, locStage
		default:
			return cls, domain.ClassifyStage(f, e.opts.Stages)
		}
	}

	if placed {
		return locCls, locStage
	}

	cls := domain.Classify(f, e.opts.Taxonomy, overrides)
	stage := domain.ClassifyStage(f, e.opts.Stages)
	e.logger.Debug("classified file",
		logging.String(logging.FieldFile, f.RelativePath),
		logging.String("category", cls.Category),
		logging.Float64("confidence", cls.Confidence),
		logging.String("stage", string(stage.Stage)),
	)
	return cls, stage
}
