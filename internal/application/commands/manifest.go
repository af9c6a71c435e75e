package commands

import (
	"context"
	"fmt"

	"mediasort/internal/application"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ManifestSettings are the rules used to read the organized tree
type ManifestSettings struct {
	Layout     domain.Layout
	Taxonomy   *domain.Taxonomy
	Stages     domain.StageVocabulary
	CoverSizes domain.CoverSizeThresholds
}

// WriteManifestResult contains the generated manifest
type WriteManifestResult struct {
	Manifest *domain.Manifest
	Stray    []domain.MediaFile // Library files outside the canonical layout
	Path     string
	Message  string
}

// WriteManifestCommand builds the presentation manifest from the organized
// tree and writes it when a writer is set
type WriteManifestCommand struct {
	library  ports.Library
	writer   ports.ManifestWriter
	settings ManifestSettings
}

// NewWriteManifestCommand creates a new WriteManifestCommand. writer may be nil.
func NewWriteManifestCommand(library ports.Library, writer ports.ManifestWriter, settings ManifestSettings) *WriteManifestCommand {
	if settings.Taxonomy == nil {
		settings.Taxonomy = domain.DefaultTaxonomy()
	}
	if len(settings.Stages.Stages) == 0 {
		settings.Stages = domain.DefaultStageVocabulary()
	}
	if settings.Layout.LibraryDir == "" {
		settings.Layout = domain.NewLayout(domain.DefaultLibraryDir)
	}
	if settings.CoverSizes == (domain.CoverSizeThresholds{}) {
		settings.CoverSizes = domain.DefaultCoverSizeThresholds()
	}
	return &WriteManifestCommand{library: library, writer: writer, settings: settings}
}

// Execute builds the manifest. Every referenced path must exist in the
// library; otherwise nothing is written and a ManifestError is returned.
func (c *WriteManifestCommand) Execute(ctx context.Context) (*WriteManifestResult, error) {
	files, err := c.library.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read library: %w", err)
	}

	s := c.settings
	placed, stray := s.Layout.LibraryFiles(files, s.Taxonomy, s.Stages)
	manifest := domain.BuildManifest(placed, s.Stages, s.CoverSizes)

	if invalid := manifest.InvalidPaths(c.library.Exists); len(invalid) > 0 {
		return nil, &application.ManifestError{Path: invalid[0]}
	}

	result := &WriteManifestResult{Manifest: manifest, Stray: stray}
	if c.writer != nil {
		path, err := c.writer.WriteManifest(manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to write manifest: %w", err)
		}
		result.Path = path
	}
	result.Message = fmt.Sprintf("Manifest: %d projects, %d categories, %d files outside the layout",
		len(manifest.Projects), len(manifest.Categories), len(stray))
	return result, nil
}
