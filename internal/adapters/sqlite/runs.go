package sqlite

import (
	"database/sql"
	"path"
	"path/filepath"
	"time"

	"mediasort/internal/domain"
)

const runColumns = `id, root, started_at, mode, total_files, processed_files, backup_location,
	planned, moved, skipped, failed`

// ListRuns returns the most recent runs first, without moves or errors.
// A non-positive limit returns every run.
func (s *Store) ListRuns(limit int) ([]*domain.OrganizationRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.OrganizationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run with its moves and errors; nil when absent
func (s *Store) GetRun(id string) (*domain.OrganizationRun, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadMoves(run); err != nil {
		return nil, err
	}
	if err := s.loadErrors(run); err != nil {
		return nil, err
	}
	return run, nil
}

func scanRun(row rowScanner) (*domain.OrganizationRun, error) {
	var (
		run       domain.OrganizationRun
		startedAt int64
		mode      string
	)
	if err := row.Scan(&run.ID, &run.Root, &startedAt, &mode, &run.TotalFiles, &run.ProcessedFiles,
		&run.BackupLocation, &run.Summary.Planned, &run.Summary.Moved, &run.Summary.Skipped,
		&run.Summary.Failed); err != nil {
		return nil, err
	}
	run.Timestamp = time.Unix(0, startedAt).UTC()
	run.Mode = domain.RunMode(mode)
	return &run, nil
}

func (s *Store) loadMoves(run *domain.OrganizationRun) error {
	rows, err := s.db.Query(`
		SELECT old_path, new_path, size_bytes, modified_at, category, subcategory, kind, stage,
			sequence, confidence, source, status, reason
		FROM run_moves WHERE run_id = ? ORDER BY position
	`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			op                        domain.MoveOperation
			oldPath                   string
			size, modifiedAt          int64
			kind, stage, source, stat string
		)
		if err := rows.Scan(&oldPath, &op.TargetPath, &size, &modifiedAt, &op.TargetCategory,
			&op.TargetSubcategory, &kind, &stage, &op.SequenceNumber, &op.Classification.Confidence,
			&source, &stat, &op.Reason); err != nil {
			return err
		}
		abs := filepath.Join(run.Root, filepath.FromSlash(oldPath))
		op.File = domain.NewMediaFile(abs, oldPath, size, time.Unix(0, modifiedAt).UTC())
		op.Kind = domain.CategoryKind(kind)
		op.TargetStage = domain.Stage(stage)
		op.Classification.Category = op.TargetCategory
		op.Classification.Subcategory = op.TargetSubcategory
		op.Classification.Source = domain.ClassificationSource(source)
		op.StageAssignment.Stage = op.TargetStage
		if op.TargetPath != "" {
			op.NewFileName = path.Base(op.TargetPath)
		}
		op.Status = domain.MoveStatus(stat)
		run.Moves = append(run.Moves, &op)
	}
	return rows.Err()
}

func (s *Store) loadErrors(run *domain.OrganizationRun) error {
	rows, err := s.db.Query(`
		SELECT file, reason FROM run_errors WHERE run_id = ? ORDER BY position
	`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.RunError
		if err := rows.Scan(&e.File, &e.Reason); err != nil {
			return err
		}
		run.Errors = append(run.Errors, e)
	}
	return rows.Err()
}
