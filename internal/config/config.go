package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mediasort/internal/domain"
)

//go:embed sample_config.toml
var sampleConfig string

// Environment variables consulted during resolution
const (
	EnvConfig = "MEDIASORT_CONFIG"
	EnvRoot   = "MEDIASORT_ROOT"
)

// Paths locates the media root and the pipeline's own state.
// LibraryDir and BackupDir are relative to the media root.
type Paths struct {
	MediaRoot  string `toml:"media_root"`
	LibraryDir string `toml:"library_dir"`
	BackupDir  string `toml:"backup_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Scan configures the file scanner.
type Scan struct {
	MaxDepth         int      `toml:"max_depth"`
	ImageExtensions  []string `toml:"image_extensions"`
	VideoExtensions  []string `toml:"video_extensions"`
	ExcludedSegments []string `toml:"excluded_segments"`
}

// Review configures the review loop.
type Review struct {
	Threshold float64 `toml:"threshold"`
	BatchSize int     `toml:"batch_size"`
}

// Sequence bounds the free-slot search.
type Sequence struct {
	MaxAttempts int `toml:"max_attempts"`
}

// Cover sets the size tiebreak thresholds in bytes.
type Cover struct {
	LargeBytes  int64 `toml:"large_bytes"`
	MediumBytes int64 `toml:"medium_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SubcategoryConfig is one [[categories.subcategories]] table.
type SubcategoryConfig struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// CategoryConfig is one [[categories]] table.
type CategoryConfig struct {
	Name          string              `toml:"name"`
	Kind          string              `toml:"kind"`
	Keywords      []string            `toml:"keywords"`
	Patterns      []string            `toml:"patterns"`
	Folders       []string            `toml:"folders"`
	Subcategories []SubcategoryConfig `toml:"subcategories"`
}

// Taxonomy points at an external taxonomy file or declares categories inline.
type Taxonomy struct {
	Path       string           `toml:"path"`
	Fallback   string           `toml:"fallback"`
	Categories []CategoryConfig `toml:"categories"`
}

// StageConfig is one stage with its keywords.
type StageConfig struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Stages is the ordered stage vocabulary.
type Stages struct {
	Default    string        `toml:"default"`
	Vocabulary []StageConfig `toml:"vocabulary"`
}

// Editor names the command used by "taxonomy edit".
type Editor struct {
	Command string `toml:"command"`
}

// Config encapsulates all configuration values for mediasort.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Scan     Scan     `toml:"scan"`
	Review   Review   `toml:"review"`
	Sequence Sequence `toml:"sequence"`
	Cover    Cover    `toml:"cover"`
	Logging  Logging  `toml:"logging"`
	Taxonomy Taxonomy `toml:"taxonomy"`
	Stages   Stages   `toml:"stages"`
	Editor   Editor   `toml:"editor"`

	taxonomy *domain.Taxonomy
	stages   domain.StageVocabulary
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediasort/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Lists set in the file replace the defaults instead of extending them
		var raw map[string]any
		if err := toml.NewDecoder(file).Decode(&raw); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		cfg.clearOverriddenLists(raw)
		if _, err := file.Seek(0, 0); err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) clearOverriddenLists(raw map[string]any) {
	if scan, ok := raw["scan"].(map[string]any); ok {
		if _, ok := scan["image_extensions"]; ok {
			c.Scan.ImageExtensions = nil
		}
		if _, ok := scan["video_extensions"]; ok {
			c.Scan.VideoExtensions = nil
		}
		if _, ok := scan["excluded_segments"]; ok {
			c.Scan.ExcludedSegments = nil
		}
	}
	if stages, ok := raw["stages"].(map[string]any); ok {
		if _, ok := stages["vocabulary"]; ok {
			c.Stages.Vocabulary = nil
		}
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediasort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ResolveMediaRoot picks the media root: flag value, then $MEDIASORT_ROOT,
// then paths.media_root. The result is absolute.
func (c *Config) ResolveMediaRoot(flagValue string) (string, error) {
	root := strings.TrimSpace(flagValue)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(EnvRoot))
	}
	if root == "" {
		root = c.Paths.MediaRoot
	}
	if root == "" {
		return "", fmt.Errorf("media root is not set: pass --root, set %s or paths.media_root", EnvRoot)
	}
	return expandPath(root)
}

// CompiledTaxonomy returns the taxonomy compiled during validation.
func (c *Config) CompiledTaxonomy() *domain.Taxonomy {
	if c.taxonomy == nil {
		return domain.DefaultTaxonomy()
	}
	return c.taxonomy
}

// StageVocabulary returns the stage vocabulary built during validation.
func (c *Config) StageVocabulary() domain.StageVocabulary {
	if len(c.stages.Stages) == 0 {
		return domain.DefaultStageVocabulary()
	}
	return c.stages
}

// ExtensionSet returns the configured media allowlist.
func (c *Config) ExtensionSet() domain.ExtensionSet {
	return domain.NewExtensionSet(c.Scan.ImageExtensions, c.Scan.VideoExtensions)
}

// Layout returns the canonical organized layout.
func (c *Config) Layout() domain.Layout {
	return domain.NewLayout(c.Paths.LibraryDir)
}

// CoverSizes returns the cover size thresholds.
func (c *Config) CoverSizes() domain.CoverSizeThresholds {
	return domain.CoverSizeThresholds{LargeBytes: c.Cover.LargeBytes, MediumBytes: c.Cover.MediumBytes}
}

// TaxonomyFile returns the external taxonomy path, or "" when inline.
func (c *Config) TaxonomyFile() string {
	return c.Taxonomy.Path
}

// LogFile returns the log file path, or "" when file logging is off.
func (c *Config) LogFile() string {
	if c.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "mediasort.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
