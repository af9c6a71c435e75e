package config

import (
	"os"
	"path/filepath"
	"strings"

	"mediasort/internal/domain"
)

const (
	defaultLibraryDir  = domain.DefaultLibraryDir
	defaultBackupDir   = "_backup"
	defaultMaxDepth    = 5
	defaultLogLevel    = "info"
	defaultLogFormat   = "auto"
	defaultLargeBytes  = 5 << 20
	defaultMediumBytes = 1 << 20
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	vocab := domain.DefaultStageVocabulary()
	stages := make([]StageConfig, len(vocab.Stages))
	for i, s := range vocab.Stages {
		stages[i] = StageConfig{Name: string(s.Name), Keywords: append([]string(nil), s.Keywords...)}
	}

	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			BackupDir:  defaultBackupDir,
			StateDir:   defaultStateDir(),
		},
		Scan: Scan{
			MaxDepth:         defaultMaxDepth,
			ImageExtensions:  append([]string(nil), domain.DefaultImageExtensions...),
			VideoExtensions:  append([]string(nil), domain.DefaultVideoExtensions...),
			ExcludedSegments: append([]string(nil), domain.DefaultExcludedSegments...),
		},
		Review: Review{
			Threshold: domain.DefaultReviewThreshold,
			BatchSize: domain.DefaultReviewBatchSize,
		},
		Sequence: Sequence{
			MaxAttempts: domain.DefaultMaxSequenceAttempts,
		},
		Cover: Cover{
			LargeBytes:  defaultLargeBytes,
			MediumBytes: defaultMediumBytes,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Taxonomy: Taxonomy{
			Fallback: domain.DefaultFallbackCategory,
		},
		Stages: Stages{
			Default:    string(vocab.Default),
			Vocabulary: stages,
		},
	}
}

// defaultStateDir follows XDG_DATA_HOME, falling back to ~/.local/share
func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mediasort")
	}
	return "~/.local/share/mediasort"
}
