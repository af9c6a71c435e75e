package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/domain"
)

const testRoot = "/media"

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

func relPaths(files []domain.MediaFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelativePath
	}
	return out
}

func TestScanFiltersAndOrders(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"nature/birds/IMG_2056_eagle_final.jpg": "a",
		"nature/birds/b.MOV":                    "b",
		"nature/birds/notes.txt":                "c",
		"nature/Archive2019/old.jpg":            "d",
		"nature/_backup/copy.jpg":               "e",
		"original-files/raw.jpg":                "f",
		"a.png":                                 "g",
		".cache/thumb.jpg":                      "h",
	})

	scanner := NewScanner(fsys, ScanOptions{}, nil)
	result, err := scanner.Scan(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := relPaths(result.Files)
	want := []string{"a.png", "nature/birds/IMG_2056_eagle_final.jpg", "nature/birds/b.MOV"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if result.Files[2].Kind != domain.MediaKindVideo {
		t.Errorf("expected video kind for .MOV, got %s", result.Files[2].Kind)
	}
	if result.Files[1].AbsolutePath != filepath.Join(testRoot, "nature", "birds", "IMG_2056_eagle_final.jpg") {
		t.Errorf("unexpected absolute path %s", result.Files[1].AbsolutePath)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestScanRespectsConfiguredExtensions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"a.jpg": "a", "b.heic": "b"})

	scanner := NewScanner(fsys, ScanOptions{Extensions: domain.NewExtensionSet([]string{".HEIC"}, nil)}, nil)
	result, err := scanner.Scan(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].FileName != "b.heic" {
		t.Fatalf("expected only b.heic, got %v", relPaths(result.Files))
	}
	if !result.Files[0].IsImage() {
		t.Error("expected configured image kind")
	}
}

func TestScanMaxDepth(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"1/2/ok.jpg":     "a",
		"1/2/3/deep.jpg": "b",
	})

	scanner := NewScanner(fsys, ScanOptions{MaxDepth: 2}, nil)
	result, err := scanner.Scan(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	got := relPaths(result.Files)
	if len(got) != 1 || got[0] != "1/2/ok.jpg" {
		t.Fatalf("expected only 1/2/ok.jpg, got %v", got)
	}
}

func TestScanUnreadableDirectoryIsWarning(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFiles(t, base, map[string]string{
		"birds/eagle.jpg":  "a",
		"locked/owl.jpg":   "b",
		"zebra/stripe.jpg": "c",
	})
	fsys := deniedFs{Fs: base, denied: map[string]bool{filepath.Join(testRoot, "locked"): true}}

	scanner := NewScanner(fsys, ScanOptions{}, nil)
	result, err := scanner.Scan(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got := relPaths(result.Files); len(got) != 2 || got[0] != "birds/eagle.jpg" || got[1] != "zebra/stripe.jpg" {
		t.Fatalf("expected readable files only, got %v", got)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Path != "locked" {
		t.Fatalf("expected one warning for locked, got %v", result.Warnings)
	}
}

func TestScanMissingRoot(t *testing.T) {
	scanner := NewScanner(afero.NewMemMapFs(), ScanOptions{}, nil)

	_, err := scanner.Scan(context.Background(), "/nowhere")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"a.jpg": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(fsys, ScanOptions{}, nil).Scan(ctx, testRoot)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLibraryFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"library/birds/final/birds_general_001.jpg": "a",
		"library/backup-shots/rough/x.jpg":          "b",
		"elsewhere/c.jpg":                           "c",
	})
	lib := NewLibrary(fsys, testRoot, "library", domain.DefaultExtensionSet())

	files, err := lib.Files(context.Background())
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	got := relPaths(files)
	want := []string{"library/backup-shots/rough/x.jpg", "library/birds/final/birds_general_001.jpg"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !lib.Exists("birds/final/birds_general_001.jpg") {
		t.Error("expected library-relative path to exist")
	}
	if lib.Exists("birds/final") {
		t.Error("expected directories not to count as files")
	}

	empty := NewLibrary(afero.NewMemMapFs(), testRoot, "library", domain.DefaultExtensionSet())
	if files, err := empty.Files(context.Background()); err != nil || len(files) != 0 {
		t.Fatalf("expected empty library, got %v (%v)", files, err)
	}
}

func TestScanKeepsModTime(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"a.jpg": "abc"})
	stamp := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := fsys.Chtimes(filepath.Join(testRoot, "a.jpg"), stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result, err := NewScanner(fsys, ScanOptions{}, nil).Scan(context.Background(), testRoot)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !result.Files[0].ModifiedAt.Equal(stamp) || result.Files[0].SizeBytes != 3 {
		t.Errorf("unexpected stat data %v/%d", result.Files[0].ModifiedAt, result.Files[0].SizeBytes)
	}
}
