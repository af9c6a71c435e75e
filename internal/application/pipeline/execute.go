package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"mediasort/internal/domain"
	"mediasort/internal/logging"
)

// Run plans and, in commit mode, executes an organization run. Per-file
// failures are recorded in the run and never abort it. A cancelled run is
// returned with its partial log alongside the context error.
func (e *Engine) Run(ctx context.Context, mode domain.RunMode) (*domain.OrganizationRun, error) {
	if mode == domain.RunModeCommit {
		release, err := e.lock()
		if err != nil {
			return nil, err
		}
		defer e.unlock(release)
	}

	plan, err := e.Plan(ctx, mode)
	if err != nil {
		return nil, err
	}
	run := plan.Run
	logger := e.logger.With(logging.String(logging.FieldRunID, run.ID), logging.String("mode", string(mode)))

	var runErr error
	if mode == domain.RunModeCommit {
		runErr = e.execute(ctx, plan, logger)
	} else {
		for _, op := range run.Moves {
			if op.Status == domain.MoveStatusPlanned {
				logger.Info("would move",
					logging.String(logging.FieldFile, op.File.RelativePath),
					logging.String(logging.FieldTarget, op.TargetPath),
				)
			}
		}
	}

	run.Summarize(run.Summary.Covers)

	if e.deps.Logs != nil {
		path, err := e.deps.Logs.WriteRunLog(run)
		if err != nil {
			logger.Error("failed to write run log", logging.Error(err))
		} else {
			logger.Debug("run log written", logging.String("path", path))
		}
	}

	if err := e.record(plan); err != nil {
		return run, fmt.Errorf("record run: %w", err)
	}

	logger.Info("run complete",
		logging.Int("total_files", run.TotalFiles),
		logging.Int("processed_files", run.ProcessedFiles),
		logging.Int("moved", run.Summary.Moved),
		logging.Int("skipped", run.Summary.Skipped),
		logging.Int("planned", run.Summary.Planned),
		logging.Int("failed", run.Summary.Failed),
		logging.Int("warnings", len(run.Warnings)),
	)
	return run, runErr
}

// execute backs up and moves every planned file, one file at a time
func (e *Engine) execute(ctx context.Context, plan *Plan, logger *slog.Logger) error {
	run := plan.Run

	pending := 0
	for _, op := range run.Moves {
		if op.Status == domain.MoveStatusPlanned {
			pending++
		}
	}
	if pending == 0 {
		return nil
	}

	backupDir, err := e.deps.Executor.PrepareBackup(run.ID, run.Timestamp)
	if err != nil {
		return fmt.Errorf("prepare backup: %w", err)
	}
	run.BackupLocation = backupDir

	for i, op := range run.Moves {
		if err := ctx.Err(); err != nil {
			e.cancelRemaining(run, i)
			logger.Warn("run cancelled", logging.Int("remaining", len(run.Moves)-i))
			return err
		}
		if op.Status != domain.MoveStatusPlanned {
			continue
		}

		if err := e.deps.Executor.Backup(backupDir, op.File); err != nil {
			e.fail(run, op, err, logger)
			continue
		}
		if err := e.deps.Executor.Move(op.File.RelativePath, op.TargetPath); err != nil {
			e.fail(run, op, err, logger)
			continue
		}
		op.Status = domain.MoveStatusMoved
		logger.Info("moved",
			logging.String(logging.FieldFile, op.File.RelativePath),
			logging.String(logging.FieldTarget, op.TargetPath),
		)

		if err := e.followMove(plan, op); err != nil {
			logger.Error("failed to carry state to new path",
				logging.String(logging.FieldFile, op.File.RelativePath),
				logging.Error(err),
			)
		}
	}
	return nil
}

func (e *Engine) fail(run *domain.OrganizationRun, op *domain.MoveOperation, err error, logger *slog.Logger) {
	merr := moveError(op, err)
	op.Status = domain.MoveStatusFailed
	op.Reason = merr.Reason
	run.AddError(op.File.RelativePath, merr.Error())
	logger.Error("move failed",
		logging.String(logging.FieldFile, op.File.RelativePath),
		logging.String(logging.FieldTarget, op.TargetPath),
		logging.Error(merr),
	)
}

// cancelRemaining marks every still-planned operation from index i on
func (e *Engine) cancelRemaining(run *domain.OrganizationRun, from int) {
	for _, op := range run.Moves[from:] {
		if op.Status != domain.MoveStatusPlanned {
			continue
		}
		op.Status = domain.MoveStatusSkipped
		op.Reason = domain.ReasonCancelled
		run.AddError(op.File.RelativePath, domain.ReasonCancelled)
	}
}

// followMove re-keys the override and review state of a moved file in its
// own transaction so each move is a checkpoint
func (e *Engine) followMove(plan *Plan, op *domain.MoveOperation) error {
	tx, err := e.deps.State.BeginTx()
	if err != nil {
		return err
	}

	if o, ok := plan.Overrides.Lookup(op.File); ok {
		if o.Key == op.File.RelativePath {
			err = tx.RekeyOverride(o.Key, op.TargetPath)
		} else {
			// Name-keyed overrides may still apply to other files
			moved := o
			moved.Key = op.TargetPath
			err = tx.UpsertOverride(moved)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("rekey override: %w", err)
		}
	}

	if err := tx.RenameReviewItem(op.File.RelativePath, op.TargetPath); err != nil {
		tx.Rollback()
		return fmt.Errorf("rename review item: %w", err)
	}
	return tx.Commit()
}

// record persists the run, review state and, for commits, history
func (e *Engine) record(plan *Plan) error {
	run := plan.Run
	tx, err := e.deps.State.BeginTx()
	if err != nil {
		return err
	}

	if err := tx.SaveRun(run); err != nil {
		tx.Rollback()
		return fmt.Errorf("save run: %w", err)
	}

	for _, op := range run.Moves {
		prev, hasPrev := plan.Reviews[op.File.RelativePath]
		item := prev
		if op.Status == domain.MoveStatusMoved {
			var prevPtr *domain.ReviewItem
			if hasPrev {
				prevPtr = &prev
			}
			moved := *op
			abs := filepath.Join(e.opts.Root, filepath.FromSlash(op.TargetPath))
			moved.File = domain.NewMediaFile(abs, op.TargetPath, op.File.SizeBytes, op.File.ModifiedAt)
			item = e.reviewItem(&moved, prevPtr, true)
		}
		if err := tx.UpsertReviewItem(item); err != nil {
			tx.Rollback()
			return fmt.Errorf("save review item: %w", err)
		}

		if run.Mode != domain.RunModeCommit || op.Reason == domain.ReasonCancelled {
			continue
		}
		fileID := op.File.RelativePath
		if op.Status == domain.MoveStatusMoved {
			fileID = op.TargetPath
		}
		if err := tx.InsertHistory(domain.HistoryEntry{
			RunID:          run.ID,
			FileID:         fileID,
			Classification: op.Classification,
			Stage:          op.StageAssignment,
			RecordedAt:     run.Timestamp,
		}); err != nil {
			tx.Rollback()
			return fmt.Errorf("save history: %w", err)
		}
	}

	return tx.Commit()
}
