package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/adapters/filesystem"
	"mediasort/internal/adapters/sqlite"
	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/logging"
	"mediasort/internal/ports"
)

const testRoot = "/media"

const eaglePath = "nature/birds/IMG_2056_eagle_final.jpg"

// deniedFs fails to open the listed directories
type deniedFs struct {
	afero.Fs
	denied map[string]bool
}

func (d deniedFs) Open(name string) (afero.File, error) {
	if d.denied[filepath.Clean(name)] {
		return nil, &os.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return d.Fs.Open(name)
}

// cancellingMover cancels the run after its first successful move
type cancellingMover struct {
	*filesystem.Mover
	cancel context.CancelFunc
}

func (m *cancellingMover) Move(fromRel, toRel string) error {
	err := m.Mover.Move(fromRel, toRel)
	if err == nil {
		m.cancel()
	}
	return err
}

// failingMover refuses to move the listed source paths
type failingMover struct {
	*filesystem.Mover
	refuse map[string]bool
}

func (m *failingMover) Move(fromRel, toRel string) error {
	if m.refuse[fromRel] {
		return &os.PathError{Op: "rename", Path: fromRel, Err: fs.ErrPermission}
	}
	return m.Mover.Move(fromRel, toRel)
}

type testEnv struct {
	fs     afero.Fs
	store  *sqlite.Store
	mover  *filesystem.Mover
	engine *Engine
}

func newTestEnv(t *testing.T, fsys afero.Fs, files map[string]string) *testEnv {
	t.Helper()
	writeFiles(t, fsys, files)

	store := sqlite.NewStore(t.TempDir())
	if err := store.Open(testRoot); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mover := filesystem.NewMover(fsys, testRoot, "_backup")
	env := &testEnv{fs: fsys, store: store, mover: mover}
	env.engine = env.newEngine(mover, nil)
	return env
}

func (env *testEnv) newEngine(executor ports.MoveExecutor, locker ports.RunLocker) *Engine {
	e := NewEngine(Options{
		Root:            testRoot,
		ReviewThreshold: domain.DefaultReviewThreshold,
	}, Deps{
		Scanner:  filesystem.NewScanner(env.fs, filesystem.ScanOptions{}, logging.NewNop()),
		Executor: executor,
		State:    env.store,
		Locker:   locker,
	}, logging.NewNop())

	clock := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	e.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	runs := 0
	e.newID = func() string {
		runs++
		return fmt.Sprintf("run%05d-test", runs)
	}
	return e
}

func seedOverrides(t *testing.T, store *sqlite.Store, overrides ...domain.Override) {
	t.Helper()
	tx, err := store.BeginTx()
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	for _, o := range overrides {
		if err := tx.UpsertOverride(o); err != nil {
			t.Fatalf("UpsertOverride failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func writeFiles(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(testRoot, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
		if err := afero.WriteFile(fsys, p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

// tree maps every file outside the backup directory to its content
func tree(t *testing.T, fsys afero.Fs) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := afero.Walk(fsys, testRoot, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(testRoot, p)
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel == "_backup" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	return out
}

func contents(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func TestRunCommitEagle(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{eaglePath: "eagle"})

	run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(run.Moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(run.Moves))
	}
	op := run.Moves[0]
	if op.Classification.Category != "birds" || op.Classification.Subcategory != "raptors" {
		t.Errorf("expected birds/raptors, got %s/%s", op.Classification.Category, op.Classification.Subcategory)
	}
	if op.Classification.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", op.Classification.Confidence)
	}
	if op.TargetStage != domain.StageFinal {
		t.Errorf("expected stage final, got %s", op.TargetStage)
	}

	want := "library/birds/final/birds_raptors_001.jpg"
	if op.TargetPath != want || op.Status != domain.MoveStatusMoved {
		t.Fatalf("expected moved to %s, got %s (%s)", want, op.TargetPath, op.Status)
	}
	got := tree(t, env.fs)
	if got[want] != "eagle" || len(got) != 1 {
		t.Errorf("unexpected tree after commit: %v", got)
	}

	backup := path.Join(run.BackupLocation, eaglePath)
	if !env.mover.Exists(backup) {
		t.Errorf("expected backup copy at %s", backup)
	}
	if run.Summary.Moved != 1 || len(run.Errors) != 0 {
		t.Errorf("unexpected summary %+v errors %v", run.Summary, run.Errors)
	}

	item, err := env.store.GetReviewItem(want)
	if err != nil || item == nil {
		t.Fatalf("expected review item at new path, got %v (%v)", item, err)
	}
	if item.State != domain.ReviewOrganized {
		t.Errorf("expected organized state, got %s", item.State)
	}
	history, err := env.store.ListHistory(want)
	if err != nil || len(history) != 1 {
		t.Fatalf("expected one history entry, got %v (%v)", history, err)
	}

	saved, err := env.store.GetRun(run.ID)
	if err != nil || saved == nil {
		t.Fatalf("expected saved run, got %v (%v)", saved, err)
	}
	if len(saved.MovedOperations()) != 1 {
		t.Errorf("expected saved move, got %d", len(saved.MovedOperations()))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{
		eaglePath:                      "eagle",
		"nature/birds/duck_rough.jpg":  "duck",
		"inbox/bass_client-42_wip.png": "bass",
	})

	if _, err := env.engine.Run(context.Background(), domain.RunModeCommit); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := tree(t, env.fs)

	run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if run.Summary.Moved != 0 || run.Summary.Planned != 0 {
		t.Errorf("expected no moves on second run, got %+v", run.Summary)
	}
	if run.Summary.Skipped != 3 {
		t.Errorf("expected 3 skipped, got %d", run.Summary.Skipped)
	}
	if run.BackupLocation != "" {
		t.Errorf("expected no backup for an empty run, got %s", run.BackupLocation)
	}
	if second := tree(t, env.fs); fmt.Sprint(second) != fmt.Sprint(first) {
		t.Errorf("tree changed on second run:\n%v\n%v", first, second)
	}
}

func TestRunKeepsEveryFile(t *testing.T) {
	files := map[string]string{
		eaglePath:                    "1",
		"nature/birds/owl.jpg":       "2",
		"nature/birds/owl copy.jpg":  "3",
		"fish/trout_final.mp4":       "4",
		"misc/carving.jpg":           "5",
		"misc/Archive2019/old.jpg":   "6",
		"commissions/client7_wip.jpg": "7",
	}
	env := newTestEnv(t, afero.NewMemMapFs(), files)

	if _, err := env.engine.Run(context.Background(), domain.RunModeCommit); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := tree(t, env.fs)
	if fmt.Sprint(contents(got)) != fmt.Sprint(contents(files)) {
		t.Errorf("expected contents %v, got %v", contents(files), contents(got))
	}
	if got["misc/Archive2019/old.jpg"] != "6" {
		t.Error("expected excluded directory to stay untouched")
	}
}

func TestRunCollisionTakesNextSequence(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{
		eaglePath: "new",
		"library/birds/final/birds_raptors_001.jpg": "existing",
	})

	run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := tree(t, env.fs)
	if got["library/birds/final/birds_raptors_001.jpg"] != "existing" {
		t.Error("expected existing file to stay in place")
	}
	if got["library/birds/final/birds_raptors_002.jpg"] != "new" {
		t.Errorf("expected new file at sequence 2, got %v", got)
	}
	if len(run.Errors) != 0 {
		t.Errorf("expected no errors, got %v", run.Errors)
	}
}

func TestRunUnreadableDirectoryIsWarning(t *testing.T) {
	fsys := deniedFs{Fs: afero.NewMemMapFs(), denied: map[string]bool{"/media/locked": true}}
	env := newTestEnv(t, fsys, map[string]string{
		eaglePath:          "eagle",
		"locked/heron.jpg": "heron",
	})

	run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(run.Warnings) != 1 || run.Warnings[0].Path != "locked" {
		t.Errorf("expected warning for locked, got %v", run.Warnings)
	}
	if len(run.Errors) != 0 {
		t.Errorf("expected no errors, got %v", run.Errors)
	}
	if run.Summary.Moved != 1 {
		t.Errorf("expected readable file moved, got %+v", run.Summary)
	}
}

func TestRunMissingRoot(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), nil)

	_, err := env.engine.Run(context.Background(), domain.RunModeDryRun)
	if !errors.Is(err, application.ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{eaglePath: "eagle"})

	_, err := env.engine.Run(context.Background(), domain.RunMode("force"))
	if !errors.Is(err, application.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestRunOverrideWinsAndFollowsFile(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{"inbox/carving.jpg": "carving"})

	tx, err := env.store.BeginTx()
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.UpsertOverride(domain.Override{
		Key:         "inbox/carving.jpg",
		Category:    "fish",
		Subcategory: "bass",
		Stage:       domain.StageFinal,
	}); err != nil {
		t.Fatalf("UpsertOverride failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "library/fish/final/fish_bass_001.jpg"
	op := run.Moves[0]
	if op.Classification.Source != domain.SourceOverride || op.TargetPath != want {
		t.Fatalf("expected override move to %s, got %s from %s", want, op.TargetPath, op.Classification.Source)
	}

	if o, _ := env.store.GetOverride("inbox/carving.jpg"); o != nil {
		t.Error("expected old override key to be gone")
	}
	if o, _ := env.store.GetOverride(want); o == nil || o.Category != "fish" {
		t.Errorf("expected override at new path, got %v", o)
	}

	again, err := env.engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if again.Summary.Skipped != 1 || again.Summary.Moved != 0 {
		t.Errorf("expected overridden file to stay put, got %+v", again.Summary)
	}
}

func TestRunFailedMoveDoesNotStopOthers(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{
		eaglePath:              "eagle",
		"nature/birds/owl.jpg": "owl",
		"fish/trout_final.mp4": "trout",
	})
	mover := &failingMover{Mover: env.mover, refuse: map[string]bool{"nature/birds/owl.jpg": true}}
	engine := env.newEngine(mover, nil)

	run, err := engine.Run(context.Background(), domain.RunModeCommit)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if run.Summary.Moved != 2 || run.Summary.Failed != 1 {
		t.Errorf("expected 2 moved and 1 failed, got %+v", run.Summary)
	}
	if len(run.Errors) != 1 || run.Errors[0].File != "nature/birds/owl.jpg" {
		t.Fatalf("expected one error for owl.jpg, got %v", run.Errors)
	}
	if !strings.Contains(run.Errors[0].Reason, "permission denied") {
		t.Errorf("expected permission reason, got %q", run.Errors[0].Reason)
	}
	if run.ProcessedFiles != run.TotalFiles || run.TotalFiles != 3 {
		t.Errorf("expected 3 processed of 3, got %d of %d", run.ProcessedFiles, run.TotalFiles)
	}

	got := tree(t, env.fs)
	if got["nature/birds/owl.jpg"] != "owl" {
		t.Error("expected failed file to stay at its source path")
	}
	if fmt.Sprint(contents(got)) != "[eagle owl trout]" {
		t.Errorf("expected every file kept, got %v", got)
	}
}

func TestRunOverrideStageOutsideVocabulary(t *testing.T) {
	tests := []struct {
		name  string
		stage domain.Stage
	}{
		{name: "path traversal", stage: "../../../../outside"},
		{name: "unknown stage", stage: "process"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{"in/IMG_1_final.jpg": "one"})
			seedOverrides(t, env.store, domain.Override{Key: "in/IMG_1_final.jpg", Category: "birds", Stage: tt.stage})

			run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			want := "library/birds/final/birds_general_001.jpg"
			if op := run.Moves[0]; op.TargetPath != want || op.Status != domain.MoveStatusMoved {
				t.Fatalf("expected move to %s, got %s (%s)", want, op.TargetPath, op.Status)
			}
			if exists, _ := afero.Exists(env.fs, "/outside"); exists {
				t.Error("expected nothing written outside the media root")
			}
			if got := tree(t, env.fs); got[want] != "one" || len(got) != 1 {
				t.Errorf("unexpected tree %v", got)
			}
		})
	}
}

func TestRunOverrideCategoryUsesDeclaredName(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{
		eaglePath:         "eagle",
		"inbox/IMG_7.jpg": "seven",
	})
	seedOverrides(t, env.store, domain.Override{Key: "inbox/IMG_7.jpg", Category: "Birds"})

	run, err := env.engine.Run(context.Background(), domain.RunModeDryRun)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	breakdown := run.Summary.CategoryBreakdown
	if breakdown["birds"] != 2 || len(breakdown) != 1 {
		t.Errorf("expected both files under birds, got %v", breakdown)
	}
}

func TestRunFallbackGoesToReview(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{"inbox/carving.jpg": "carving"})

	if _, err := env.engine.Run(context.Background(), domain.RunModeDryRun); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pending, err := env.store.ListReviewItems(domain.ReviewPending)
	if err != nil {
		t.Fatalf("ListReviewItems failed: %v", err)
	}
	if len(pending) != 1 || pending[0].FileID != "inbox/carving.jpg" {
		t.Fatalf("expected carving.jpg pending, got %v", pending)
	}
	if pending[0].ProposedCategory != "misc" {
		t.Errorf("expected misc proposal, got %s", pending[0].ProposedCategory)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	files := map[string]string{eaglePath: "eagle", "inbox/owl_sketch.png": "owl"}
	env := newTestEnv(t, afero.NewMemMapFs(), files)

	run, err := env.engine.Run(context.Background(), domain.RunModeDryRun)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run.Summary.Planned != 2 || run.Summary.Moved != 0 {
		t.Errorf("expected 2 planned, got %+v", run.Summary)
	}
	if got := tree(t, env.fs); fmt.Sprint(got) != fmt.Sprint(files) {
		t.Errorf("dry run changed the tree: %v", got)
	}
	if exists, _ := afero.DirExists(env.fs, "/media/_backup"); exists {
		t.Error("dry run created a backup directory")
	}
	if history, _ := env.store.ListHistory(eaglePath); len(history) != 0 {
		t.Errorf("dry run recorded history: %v", history)
	}
}

func TestRunCancelledMidway(t *testing.T) {
	fsys := afero.NewMemMapFs()
	env := newTestEnv(t, fsys, map[string]string{
		"nature/birds/a_eagle.jpg": "a",
		"nature/birds/b_eagle.jpg": "b",
		"nature/birds/c_eagle.jpg": "c",
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine := env.newEngine(&cancellingMover{Mover: env.mover, cancel: cancel}, nil)

	run, err := engine.Run(ctx, domain.RunModeCommit)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if run == nil {
		t.Fatal("expected partial run")
	}
	if run.Summary.Moved != 1 || run.Summary.Skipped != 2 {
		t.Errorf("expected 1 moved and 2 skipped, got %+v", run.Summary)
	}
	if run.ProcessedFiles != 1 {
		t.Errorf("expected 1 processed file, got %d", run.ProcessedFiles)
	}
	for _, e := range run.Errors {
		if e.Reason != domain.ReasonCancelled {
			t.Errorf("unexpected error %v", e)
		}
	}
	if len(tree(t, fsys)) != 3 {
		t.Error("expected every file to survive cancellation")
	}
}

func TestRunRefusesWhenLocked(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{eaglePath: "eagle"})
	lockDir := t.TempDir()

	release, ok, err := filesystem.NewLocker(lockDir).TryLock(testRoot)
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%v err=%v", ok, err)
	}
	defer release()

	engine := env.newEngine(env.mover, filesystem.NewLocker(lockDir))
	if _, err := engine.Run(context.Background(), domain.RunModeCommit); !errors.Is(err, application.ErrRunLocked) {
		t.Fatalf("expected ErrRunLocked, got %v", err)
	}
	if _, err := engine.Run(context.Background(), domain.RunModeDryRun); err != nil {
		t.Errorf("expected dry run to ignore the lock, got %v", err)
	}
	if got := tree(t, env.fs); got[eaglePath] != "eagle" {
		t.Error("expected file untouched while locked")
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name       string
		prepare    func(t *testing.T, env *testEnv, run *domain.OrganizationRun)
		wantRename int
		wantCopied int
		wantFailed int
	}{
		{
			name:       "renames back",
			prepare:    func(*testing.T, *testEnv, *domain.OrganizationRun) {},
			wantRename: 2,
		},
		{
			name: "copies from backup when organized file is gone",
			prepare: func(t *testing.T, env *testEnv, run *domain.OrganizationRun) {
				target := filepath.Join(testRoot, filepath.FromSlash(run.Moves[0].TargetPath))
				if err := env.fs.Remove(target); err != nil {
					t.Fatalf("remove failed: %v", err)
				}
			},
			wantRename: 1,
			wantCopied: 1,
		},
		{
			name: "occupied original path fails per file",
			prepare: func(t *testing.T, env *testEnv, run *domain.OrganizationRun) {
				writeFiles(t, env.fs, map[string]string{run.Moves[0].File.RelativePath: "squatter"})
			},
			wantRename: 1,
			wantFailed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{eaglePath: "eagle", "inbox/owl_sketch.png": "owl"}
			env := newTestEnv(t, afero.NewMemMapFs(), files)

			run, err := env.engine.Run(context.Background(), domain.RunModeCommit)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			tt.prepare(t, env, run)

			result, err := env.engine.Restore(context.Background(), run.ID)
			if err != nil {
				t.Fatalf("Restore failed: %v", err)
			}
			if result.Renamed != tt.wantRename || result.Copied != tt.wantCopied || len(result.Failures) != tt.wantFailed {
				t.Errorf("expected %d/%d/%d, got %d/%d/%d", tt.wantRename, tt.wantCopied, tt.wantFailed,
					result.Renamed, result.Copied, len(result.Failures))
			}
			if tt.wantFailed == 0 {
				if got := tree(t, env.fs); fmt.Sprint(got) != fmt.Sprint(files) {
					t.Errorf("expected original tree back, got %v", got)
				}
				item, _ := env.store.GetReviewItem(eaglePath)
				if item == nil || item.State != domain.ReviewAutoClassified {
					t.Errorf("expected review state back at old path, got %v", item)
				}
			}
		})
	}
}

func TestRestoreRejects(t *testing.T) {
	env := newTestEnv(t, afero.NewMemMapFs(), map[string]string{eaglePath: "eagle"})

	if _, err := env.engine.Restore(context.Background(), "missing"); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	dry, err := env.engine.Run(context.Background(), domain.RunModeDryRun)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	_, err = env.engine.Restore(context.Background(), dry.ID)
	var valErr *application.ValidationError
	if !errors.As(err, &valErr) || !strings.Contains(valErr.Message, "committed") {
		t.Errorf("expected validation error for dry run, got %v", err)
	}
}
