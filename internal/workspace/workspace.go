// Package workspace wires configuration, logging, persistent state and the
// filesystem adapters into a ready pipeline for one media root. Every front
// end opens a Workspace and closes it on exit.
package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediasort/internal/adapters/filesystem"
	"mediasort/internal/adapters/jsonfile"
	"mediasort/internal/adapters/sqlite"
	"mediasort/internal/application/commands"
	"mediasort/internal/application/pipeline"
	"mediasort/internal/config"
	"mediasort/internal/logging"
)

// Options selects the configuration and media root
type Options struct {
	ConfigPath string
	Root       string
	// LogOutput defaults to stderr. The TUI passes io.Discard.
	LogOutput io.Writer
	LogLevel  string
}

// Workspace is an opened media root
type Workspace struct {
	Config     *config.Config
	ConfigPath string
	Root       string
	Logger     *slog.Logger
	Fs         afero.Fs
	Store      *sqlite.Store
	Engine     *pipeline.Engine
	Library    *filesystem.Library

	logCloser io.Closer
	closed    bool
}

// LoadConfig resolves and loads the configuration without opening any state
func LoadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, _, err := config.Load(strings.TrimSpace(path))
	if err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

// Open loads the configuration, opens the state store for the media root and
// builds the pipeline engine
func Open(opts Options) (*Workspace, error) {
	cfg, path, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return OpenWithConfig(cfg, path, opts)
}

// OpenWithConfig is Open with an already loaded configuration
func OpenWithConfig(cfg *config.Config, configPath string, opts Options) (*Workspace, error) {
	root, err := cfg.ResolveMediaRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, logCloser, err := logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Logging.Format,
		Output:  opts.LogOutput,
		LogFile: cfg.LogFile(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRoot, root))

	store := sqlite.NewStore(cfg.Paths.StateDir)
	if err := store.Open(root); err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open state store: %w", err)
	}

	fsys := afero.NewOsFs()
	scanner := filesystem.NewScanner(fsys, filesystem.ScanOptions{
		MaxDepth:   cfg.Scan.MaxDepth,
		Extensions: cfg.ExtensionSet(),
		Excluded:   cfg.Scan.ExcludedSegments,
	}, logger)

	ws := &Workspace{
		Config:     cfg,
		ConfigPath: configPath,
		Root:       root,
		Logger:     logger,
		Fs:         fsys,
		Store:      store,
		Library:    filesystem.NewLibrary(fsys, root, cfg.Paths.LibraryDir, cfg.ExtensionSet()),
		logCloser:  logCloser,
	}

	ws.Engine = pipeline.NewEngine(pipeline.Options{
		Root:                root,
		Layout:              cfg.Layout(),
		Taxonomy:            cfg.CompiledTaxonomy(),
		Stages:              cfg.StageVocabulary(),
		CoverSizes:          cfg.CoverSizes(),
		ReviewThreshold:     cfg.Review.Threshold,
		MaxSequenceAttempts: cfg.Sequence.MaxAttempts,
	}, pipeline.Deps{
		Scanner:  scanner,
		Executor: filesystem.NewMover(fsys, root, cfg.Paths.BackupDir),
		State:    store,
		Locker:   filesystem.NewLocker(ws.LockDir()),
		Logs:     jsonfile.NewRunLogWriter(ws.RunLogDir()),
	}, logger)

	logger.Debug("workspace opened",
		logging.String("config", configPath),
		logging.String("state", store.Path()),
	)
	return ws, nil
}

// Close releases the state store and the log file. Closing twice is a no-op.
func (w *Workspace) Close() error {
	if w == nil || w.closed {
		return nil
	}
	w.closed = true
	err := w.Store.Close()
	if cerr := w.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// RunLogDir holds the JSON run logs for this root, next to its database
func (w *Workspace) RunLogDir() string {
	db := w.Store.Path()
	return filepath.Join(filepath.Dir(db), "runs", strings.TrimSuffix(filepath.Base(db), ".db"))
}

// LockDir holds the per-root run lock files
func (w *Workspace) LockDir() string {
	return filepath.Join(filepath.Dir(w.Store.Path()), "locks")
}

// ManifestPath is the default manifest location inside the library
func (w *Workspace) ManifestPath() string {
	return filepath.Join(w.Root, filepath.FromSlash(w.Config.Paths.LibraryDir), "manifest.json")
}

// ManifestSettings returns the rules used to read the organized tree
func (w *Workspace) ManifestSettings() commands.ManifestSettings {
	return commands.ManifestSettings{
		Layout:     w.Config.Layout(),
		Taxonomy:   w.Config.CompiledTaxonomy(),
		Stages:     w.Config.StageVocabulary(),
		CoverSizes: w.Config.CoverSizes(),
	}
}

// ComponentLogger returns the workspace logger tagged with a component name
func (w *Workspace) ComponentLogger(component string) *slog.Logger {
	return logging.NewComponentLogger(w.Logger, component)
}
