package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediasort/internal/domain"
	"mediasort/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store implements ports.StateStore using SQLite
type Store struct {
	db       *sql.DB
	stateDir string
	root     string
	dbPath   string
}

// Ensure Store implements StateStore
var _ ports.StateStore = (*Store)(nil)

// NewStore creates a store keeping databases in stateDir.
// An empty stateDir uses the XDG data directory.
func NewStore(stateDir string) *Store {
	return &Store{stateDir: stateDir}
}

// Open initializes the state database for the given media root
func (s *Store) Open(root string) error {
	s.root = filepath.Clean(root)
	s.dbPath = databasePath(s.stateDir, s.root)

	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// Connection pragmas go in the DSN so every pooled connection gets them
	dsn := s.dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS overrides (
			key TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS review_items (
			file_id TEXT PRIMARY KEY,
			file_path TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL DEFAULT '',
			stage TEXT NOT NULL,
			confidence REAL NOT NULL,
			state TEXT NOT NULL,
			flagged INTEGER NOT NULL DEFAULT 0,
			flag_reason TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			file_id TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			confidence REAL NOT NULL,
			signals TEXT NOT NULL,
			source TEXT NOT NULL,
			stage TEXT NOT NULL,
			stage_confidence REAL NOT NULL,
			stage_keywords TEXT NOT NULL,
			recorded_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			mode TEXT NOT NULL,
			total_files INTEGER NOT NULL,
			processed_files INTEGER NOT NULL,
			backup_location TEXT NOT NULL DEFAULT '',
			planned INTEGER NOT NULL,
			moved INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_moves (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			old_path TEXT NOT NULL,
			new_path TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			modified_at INTEGER NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			kind TEXT NOT NULL,
			stage TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			confidence REAL NOT NULL,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		);
		CREATE TABLE IF NOT EXISTS run_errors (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			file TEXT NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_review_state ON review_items(state);
		CREATE INDEX IF NOT EXISTS idx_history_file ON history(file_id);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if err := s.updateMeta(); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file backing the store
func (s *Store) Path() string {
	return s.dbPath
}

// databasePath returns the path for the SQLite database
func databasePath(stateDir, root string) string {
	if stateDir == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, _ := os.UserHomeDir()
			dataHome = filepath.Join(home, ".local", "share")
		}
		stateDir = filepath.Join(dataHome, "mediasort")
	}

	return filepath.Join(stateDir, hashRoot(root)+".db")
}

// hashRoot returns a short hash of the media root path
func hashRoot(root string) string {
	h := sha256.Sum256([]byte(root))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

func (s *Store) updateMeta() error {
	for key, value := range map[string]string{"schema_version": schemaVersion, "media_root": s.root} {
		if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return err
		}
	}
	return nil
}

// GetOverride retrieves an override by key; nil when absent
func (s *Store) GetOverride(key string) (*domain.Override, error) {
	o, err := scanOverride(s.db.QueryRow(`
		SELECT key, category, subcategory, stage, notes, created_at
		FROM overrides WHERE key = ?
	`, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOverrides returns every override ordered by key
func (s *Store) ListOverrides() ([]domain.Override, error) {
	rows, err := s.db.Query(`
		SELECT key, category, subcategory, stage, notes, created_at
		FROM overrides ORDER BY key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// GetReviewItem retrieves a review item by file id; nil when absent
func (s *Store) GetReviewItem(fileID string) (*domain.ReviewItem, error) {
	item, err := scanReviewItem(s.db.QueryRow(`
		SELECT file_id, file_path, category, subcategory, stage, confidence,
			state, flagged, flag_reason, updated_at
		FROM review_items WHERE file_id = ?
	`, fileID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListReviewItems returns items in the given states, or all items when
// none are given, ordered by file id
func (s *Store) ListReviewItems(states ...domain.ReviewState) ([]domain.ReviewItem, error) {
	query := `
		SELECT file_id, file_path, category, subcategory, stage, confidence,
			state, flagged, flag_reason, updated_at
		FROM review_items`
	args := make([]any, len(states))
	if len(states) > 0 {
		placeholders := make([]string, len(states))
		for i, st := range states {
			placeholders[i] = "?"
			args[i] = string(st)
		}
		query += " WHERE state IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY file_id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// ListHistory returns a file's recorded classifications, oldest first
func (s *Store) ListHistory(fileID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT run_id, file_id, category, subcategory, confidence, signals, source,
			stage, stage_confidence, stage_keywords, recorded_at
		FROM history WHERE file_id = ? ORDER BY id
	`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			e                 domain.HistoryEntry
			signals, keywords string
			source, stage     string
			recordedAt        int64
		)
		if err := rows.Scan(&e.RunID, &e.FileID, &e.Classification.Category, &e.Classification.Subcategory,
			&e.Classification.Confidence, &signals, &source, &stage, &e.Stage.Confidence, &keywords, &recordedAt); err != nil {
			return nil, err
		}
		e.Classification.Source = domain.ClassificationSource(source)
		e.Classification.MatchedSignals = decodeList(signals)
		e.Stage.Stage = domain.Stage(stage)
		e.Stage.MatchedKeywords = decodeList(keywords)
		e.RecordedAt = time.Unix(0, recordedAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// BeginTx starts a new transaction
func (s *Store) BeginTx() (ports.StateTx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &stateTx{tx: tx}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (*domain.Override, error) {
	var (
		o         domain.Override
		stage     string
		createdAt int64
	)
	if err := row.Scan(&o.Key, &o.Category, &o.Subcategory, &stage, &o.Notes, &createdAt); err != nil {
		return nil, err
	}
	o.Stage = domain.Stage(stage)
	o.CreatedAt = time.Unix(0, createdAt).UTC()
	return &o, nil
}

func scanReviewItem(row rowScanner) (*domain.ReviewItem, error) {
	var (
		item         domain.ReviewItem
		stage, state string
		flagged      int
		updatedAt    int64
	)
	if err := row.Scan(&item.FileID, &item.FilePath, &item.ProposedCategory, &item.ProposedSubcategory,
		&stage, &item.Confidence, &state, &flagged, &item.FlagReason, &updatedAt); err != nil {
		return nil, err
	}
	item.ProposedStage = domain.Stage(stage)
	item.State = domain.ReviewState(state)
	item.Flagged = flagged != 0
	item.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &item, nil
}

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeList(raw string) []string {
	var out []string
	_ = json.Unmarshal([]byte(raw), &out)
	if len(out) == 0 {
		return nil
	}
	return out
}
