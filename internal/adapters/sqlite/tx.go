package sqlite

import (
	"database/sql"

	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// stateTx implements ports.StateTx
type stateTx struct {
	tx *sql.Tx
}

// Ensure stateTx implements StateTx
var _ ports.StateTx = (*stateTx)(nil)

// UpsertOverride inserts or replaces an override
func (t *stateTx) UpsertOverride(o domain.Override) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO overrides (key, category, subcategory, stage, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, o.Key, o.Category, o.Subcategory, string(o.Stage), o.Notes, o.CreatedAt.UnixNano())
	return err
}

// RekeyOverride moves an override to a new key, replacing any override
// already stored there
func (t *stateTx) RekeyOverride(oldKey, newKey string) error {
	if oldKey == newKey {
		return nil
	}
	if _, err := t.tx.Exec(`
		INSERT OR REPLACE INTO overrides (key, category, subcategory, stage, notes, created_at)
		SELECT ?, category, subcategory, stage, notes, created_at FROM overrides WHERE key = ?
	`, newKey, oldKey); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM overrides WHERE key = ?`, oldKey)
	return err
}

// UpsertReviewItem inserts or replaces a review item
func (t *stateTx) UpsertReviewItem(item domain.ReviewItem) error {
	flagged := 0
	if item.Flagged {
		flagged = 1
	}
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO review_items (file_id, file_path, category, subcategory, stage,
			confidence, state, flagged, flag_reason, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.FileID, item.FilePath, item.ProposedCategory, item.ProposedSubcategory, string(item.ProposedStage),
		item.Confidence, string(item.State), flagged, item.FlagReason, item.UpdatedAt.UnixNano())
	return err
}

// RenameReviewItem re-keys a file's review state and history after a move
func (t *stateTx) RenameReviewItem(oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	if _, err := t.tx.Exec(`DELETE FROM review_items WHERE file_id = ?`, newID); err != nil {
		return err
	}
	if _, err := t.tx.Exec(`UPDATE review_items SET file_id = ? WHERE file_id = ?`, newID, oldID); err != nil {
		return err
	}
	_, err := t.tx.Exec(`UPDATE history SET file_id = ? WHERE file_id = ?`, newID, oldID)
	return err
}

// InsertHistory appends an audit entry
func (t *stateTx) InsertHistory(e domain.HistoryEntry) error {
	_, err := t.tx.Exec(`
		INSERT INTO history (run_id, file_id, category, subcategory, confidence, signals, source,
			stage, stage_confidence, stage_keywords, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.RunID, e.FileID, e.Classification.Category, e.Classification.Subcategory, e.Classification.Confidence,
		encodeList(e.Classification.MatchedSignals), string(e.Classification.Source),
		string(e.Stage.Stage), e.Stage.Confidence, encodeList(e.Stage.MatchedKeywords), e.RecordedAt.UnixNano())
	return err
}

// SaveRun stores a run with its moves and errors, replacing a previous save
func (t *stateTx) SaveRun(run *domain.OrganizationRun) error {
	for _, table := range []string{"run_moves", "run_errors"} {
		if _, err := t.tx.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, run.ID); err != nil {
			return err
		}
	}
	if _, err := t.tx.Exec(`DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return err
	}

	_, err := t.tx.Exec(`
		INSERT INTO runs (id, root, started_at, mode, total_files, processed_files, backup_location,
			planned, moved, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Root, run.Timestamp.UnixNano(), string(run.Mode), run.TotalFiles, run.ProcessedFiles,
		run.BackupLocation, run.Summary.Planned, run.Summary.Moved, run.Summary.Skipped, run.Summary.Failed)
	if err != nil {
		return err
	}

	moveStmt, err := t.tx.Prepare(`
		INSERT INTO run_moves (run_id, position, old_path, new_path, size_bytes, modified_at,
			category, subcategory, kind, stage, sequence, confidence, source, status, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer moveStmt.Close()

	for i, op := range run.Moves {
		if _, err := moveStmt.Exec(run.ID, i, op.File.RelativePath, op.TargetPath, op.File.SizeBytes,
			op.File.ModifiedAt.UnixNano(), op.TargetCategory, op.TargetSubcategory, string(op.Kind),
			string(op.TargetStage), op.SequenceNumber, op.Classification.Confidence,
			string(op.Classification.Source), string(op.Status), op.Reason); err != nil {
			return err
		}
	}

	for i, e := range run.Errors {
		if _, err := t.tx.Exec(`
			INSERT INTO run_errors (run_id, position, file, reason) VALUES (?, ?, ?, ?)
		`, run.ID, i, e.File, e.Reason); err != nil {
			return err
		}
	}
	return nil
}

// Commit commits the transaction
func (t *stateTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *stateTx) Rollback() error {
	return t.tx.Rollback()
}
