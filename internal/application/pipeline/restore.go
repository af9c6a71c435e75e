package pipeline

import (
	"context"
	"fmt"

	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/logging"
)

// RestoreResult reports what a rollback did
type RestoreResult struct {
	RunID    string
	Renamed  int // Moved back from the organized path
	Copied   int // Copied back from the backup
	Failures []domain.RunError
}

// Restore rolls a committed run back. Each moved file goes back to its old
// path: renamed when it is still at its organized path, otherwise copied
// from the run's backup. An occupied old path is a per-file failure.
func (e *Engine) Restore(ctx context.Context, runID string) (*RestoreResult, error) {
	release, err := e.lock()
	if err != nil {
		return nil, err
	}
	defer e.unlock(release)

	run, err := e.deps.State.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("run %s: %w", runID, application.ErrNotFound)
	}
	if run.Mode != domain.RunModeCommit {
		return nil, &application.ValidationError{Field: "runID", Message: "only committed runs can be restored"}
	}

	logger := e.logger.With(logging.String(logging.FieldRunID, run.ID))
	result := &RestoreResult{RunID: run.ID}
	moved := run.MovedOperations()

	// Newest move first so a chain of moves unwinds in order
	for i := len(moved) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		op := moved[i]
		oldPath, newPath := op.File.RelativePath, op.TargetPath

		if e.deps.Executor.Exists(oldPath) {
			e.restoreFailed(result, oldPath, "original path is occupied")
			continue
		}

		if e.deps.Executor.Exists(newPath) {
			if err := e.deps.Executor.Move(newPath, oldPath); err != nil {
				e.restoreFailed(result, oldPath, err.Error())
				continue
			}
			result.Renamed++
		} else {
			if run.BackupLocation == "" {
				e.restoreFailed(result, oldPath, "organized copy is gone and the run has no backup")
				continue
			}
			if err := e.deps.Executor.CopyFromBackup(run.BackupLocation, oldPath); err != nil {
				e.restoreFailed(result, oldPath, err.Error())
				continue
			}
			result.Copied++
		}

		if err := e.unfollowMove(op); err != nil {
			logger.Error("failed to carry state back to old path",
				logging.String(logging.FieldFile, oldPath),
				logging.Error(err),
			)
		}
		logger.Info("restored",
			logging.String(logging.FieldFile, oldPath),
			logging.String("from", newPath),
		)
	}

	logger.Info("restore complete",
		logging.Int("renamed", result.Renamed),
		logging.Int("copied", result.Copied),
		logging.Int("failed", len(result.Failures)),
	)
	return result, nil
}

func (e *Engine) restoreFailed(result *RestoreResult, file, reason string) {
	result.Failures = append(result.Failures, domain.RunError{File: file, Reason: reason})
	e.logger.Error("restore failed", logging.String(logging.FieldFile, file), logging.String("reason", reason))
}

// unfollowMove moves the override and review state back to the old path
func (e *Engine) unfollowMove(op *domain.MoveOperation) error {
	oldPath, newPath := op.File.RelativePath, op.TargetPath

	current, err := e.deps.State.GetOverride(newPath)
	if err != nil {
		return err
	}
	item, err := e.deps.State.GetReviewItem(newPath)
	if err != nil {
		return err
	}

	tx, err := e.deps.State.BeginTx()
	if err != nil {
		return err
	}
	if current != nil {
		if err := tx.RekeyOverride(newPath, oldPath); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.RenameReviewItem(newPath, oldPath); err != nil {
		tx.Rollback()
		return err
	}
	if item != nil {
		item.FileID = oldPath
		item.FilePath = op.File.AbsolutePath
		item.UpdatedAt = e.now()
		if item.State == domain.ReviewOrganized {
			item.State = domain.ReviewAutoClassified
			if current != nil {
				item.State = domain.ReviewReviewed
			}
		}
		if err := tx.UpsertReviewItem(*item); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
