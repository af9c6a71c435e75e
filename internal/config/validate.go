package config

import (
	"errors"
	"fmt"
	"strings"

	"mediasort/internal/application"
	"mediasort/internal/domain"
)

// Validate ensures the configuration is usable and compiles the taxonomy
// and stage vocabulary.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Sequence.MaxAttempts <= 0 {
		return errors.New("sequence.max_attempts must be positive")
	}
	if c.Cover.LargeBytes < c.Cover.MediumBytes {
		return errors.New("cover.large_bytes must be at least cover.medium_bytes")
	}
	if err := c.compileStages(); err != nil {
		return err
	}
	return c.compileTaxonomy()
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == c.Paths.BackupDir {
		return errors.New("paths.library_dir and paths.backup_dir must differ")
	}
	if strings.HasPrefix(c.Paths.LibraryDir+"/", c.Paths.BackupDir+"/") || strings.HasPrefix(c.Paths.BackupDir+"/", c.Paths.LibraryDir+"/") {
		return errors.New("paths.library_dir and paths.backup_dir must not be nested")
	}
	for _, seg := range strings.Split(c.Paths.LibraryDir, "/") {
		if domain.IsExcludedSegment(seg, c.Scan.ExcludedSegments) {
			return fmt.Errorf("paths.library_dir %q is hidden by scan.excluded_segments", c.Paths.LibraryDir)
		}
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.ImageExtensions)+len(c.Scan.VideoExtensions) == 0 {
		return errors.New("scan: at least one image or video extension is required")
	}
	return nil
}

func (c *Config) validateReview() error {
	if err := application.ValidateThreshold("review.threshold", c.Review.Threshold); err != nil {
		return err
	}
	if c.Review.BatchSize <= 0 {
		return errors.New("review.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) compileStages() error {
	vocab := domain.StageVocabulary{Default: domain.Stage(c.Stages.Default)}
	for _, s := range c.Stages.Vocabulary {
		vocab.Stages = append(vocab.Stages, domain.StageRule{
			Name:     domain.Stage(strings.ToLower(strings.TrimSpace(s.Name))),
			Keywords: s.Keywords,
		})
	}
	if err := vocab.Validate(); err != nil {
		return fmt.Errorf("stages: %w", err)
	}
	c.stages = vocab
	return nil
}

func (c *Config) compileTaxonomy() error {
	categories := c.Taxonomy.Categories
	fallback := c.Taxonomy.Fallback

	if c.Taxonomy.Path != "" {
		file, err := LoadTaxonomyFile(c.Taxonomy.Path)
		if err != nil {
			return err
		}
		categories = file.Categories
		if file.Fallback != "" {
			fallback = file.Fallback
		}
	}

	rules := toRules(categories)
	if len(rules) == 0 {
		rules = domain.DefaultCategoryRules()
	}

	tax, err := domain.NewTaxonomy(rules, fallback)
	if err != nil {
		return fmt.Errorf("taxonomy: %w", err)
	}
	c.taxonomy = tax
	return nil
}

func toRules(categories []CategoryConfig) []domain.CategoryRule {
	rules := make([]domain.CategoryRule, len(categories))
	for i, cat := range categories {
		subs := make([]domain.Subcategory, len(cat.Subcategories))
		for j, sub := range cat.Subcategories {
			subs[j] = domain.Subcategory{Name: sub.Name, Keywords: sub.Keywords}
		}
		rules[i] = domain.CategoryRule{
			Name:          cat.Name,
			Kind:          domain.CategoryKind(strings.ToLower(strings.TrimSpace(cat.Kind))),
			Keywords:      cat.Keywords,
			Patterns:      cat.Patterns,
			Folders:       cat.Folders,
			Subcategories: subs,
		}
	}
	return rules
}
