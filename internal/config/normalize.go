package config

import (
	"fmt"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeLogging()
	c.Taxonomy.Fallback = strings.TrimSpace(c.Taxonomy.Fallback)
	c.Stages.Default = strings.ToLower(strings.TrimSpace(c.Stages.Default))
	c.Editor.Command = strings.TrimSpace(c.Editor.Command)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaRoot, err = expandPath(strings.TrimSpace(c.Paths.MediaRoot)); err != nil {
		return fmt.Errorf("paths.media_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Taxonomy.Path, err = expandPath(strings.TrimSpace(c.Taxonomy.Path)); err != nil {
		return fmt.Errorf("taxonomy.path: %w", err)
	}

	c.Paths.LibraryDir = cleanRelative(c.Paths.LibraryDir)
	if c.Paths.LibraryDir == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	c.Paths.BackupDir = cleanRelative(c.Paths.BackupDir)
	if c.Paths.BackupDir == "" {
		c.Paths.BackupDir = defaultBackupDir
	}
	return nil
}

// cleanRelative turns a root-relative directory into a clean slash path
func cleanRelative(dir string) string {
	dir = strings.ReplaceAll(strings.TrimSpace(dir), "\\", "/")
	if dir == "" {
		return ""
	}
	return strings.Trim(path.Clean("/"+dir), "/")
}

func (c *Config) normalizeScan() {
	if c.Scan.MaxDepth <= 0 {
		c.Scan.MaxDepth = defaultMaxDepth
	}

	// The backup tree must never be scanned back in
	backupBase := path.Base(c.Paths.BackupDir)
	found := false
	for _, seg := range c.Scan.ExcludedSegments {
		if strings.Contains(strings.ToLower(backupBase), strings.ToLower(strings.TrimSpace(seg))) && strings.TrimSpace(seg) != "" {
			found = true
			break
		}
	}
	if !found {
		c.Scan.ExcludedSegments = append(c.Scan.ExcludedSegments, backupBase)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
