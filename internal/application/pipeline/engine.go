// Package pipeline runs the organize pipeline: scan, classify, plan,
// back up, move, and record. It also rolls committed runs back.
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/logging"
	"mediasort/internal/ports"
)

// Options carries the classification rules and limits for one media root
type Options struct {
	Root                string
	Layout              domain.Layout
	Taxonomy            *domain.Taxonomy
	Stages              domain.StageVocabulary
	CoverSizes          domain.CoverSizeThresholds
	ReviewThreshold     float64
	MaxSequenceAttempts int
}

// Deps are the adapters the engine drives. Locker and Logs are optional.
type Deps struct {
	Scanner  ports.MediaScanner
	Executor ports.MoveExecutor
	State    ports.StateStore
	Locker   ports.RunLocker
	Logs     ports.RunLogWriter
}

// Engine orchestrates organization runs against one media root
type Engine struct {
	opts   Options
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewEngine creates an engine, filling defaults for unset options
func NewEngine(opts Options, deps Deps, logger *slog.Logger) *Engine {
	if opts.Taxonomy == nil {
		opts.Taxonomy = domain.DefaultTaxonomy()
	}
	if len(opts.Stages.Stages) == 0 {
		opts.Stages = domain.DefaultStageVocabulary()
	}
	if opts.Layout.LibraryDir == "" {
		opts.Layout = domain.NewLayout(domain.DefaultLibraryDir)
	}
	if opts.CoverSizes == (domain.CoverSizeThresholds{}) {
		opts.CoverSizes = domain.DefaultCoverSizeThresholds()
	}
	if opts.MaxSequenceAttempts <= 0 {
		opts.MaxSequenceAttempts = domain.DefaultMaxSequenceAttempts
	}
	return &Engine{
		opts:   opts,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Root returns the media root the engine works on
func (e *Engine) Root() string {
	return e.opts.Root
}

// lock takes the per-root run lock when a locker is configured
func (e *Engine) lock() (func() error, error) {
	if e.deps.Locker == nil {
		return func() error { return nil }, nil
	}
	release, ok, err := e.deps.Locker.TryLock(e.opts.Root)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", e.opts.Root, application.ErrRunLocked)
	}
	return release, nil
}

func (e *Engine) unlock(release func() error) {
	if err := release(); err != nil {
		e.logger.Warn("failed to release run lock", logging.Error(err))
	}
}

// moveError classifies an executor failure
func moveError(op *domain.MoveOperation, err error) *application.MoveError {
	kind := application.MoveErrorFailure
	if errors.Is(err, fs.ErrExist) {
		kind = application.MoveErrorCollision
	}
	return &application.MoveError{
		File:   op.File.RelativePath,
		Target: op.TargetPath,
		Reason: err.Error(),
		Kind:   kind,
	}
}
