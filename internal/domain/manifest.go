package domain

import (
	"path"
	"sort"
	"strings"
)

// Manifest is the presentation-facing snapshot of the organized tree.
// Every path is relative to the library directory.
type Manifest struct {
	Projects   []ManifestProject
	Categories map[string]ManifestCategory
}

// ManifestProject describes one project-kind category
type ManifestProject struct {
	ID         string
	Name       string
	CoverImage string
	Stages     map[Stage][]string
	Stats      ProjectStats
}

// ManifestCategory lists every item placed in one category
type ManifestCategory struct {
	CoverImage string
	Items      []string
}

// LibraryFiles classifies files found under the library directory by their
// location. Files outside the canonical layout are returned separately.
func (l Layout) LibraryFiles(files []MediaFile, tax *Taxonomy, vocab StageVocabulary) (placed []CategorizedFile, stray []MediaFile) {
	prefix := l.LibraryDir + "/"
	for _, f := range files {
		cls, stage, ok := l.ClassifyLocation(f, tax, vocab)
		if !ok {
			stray = append(stray, f)
			continue
		}
		loc, _ := l.Parse(f.RelativePath)
		placed = append(placed, CategorizedFile{
			File:        f,
			Path:        strings.TrimPrefix(f.RelativePath, prefix),
			Category:    cls.Category,
			Kind:        tax.KindOf(cls.Category),
			Subcategory: cls.Subcategory,
			Stage:       stage.Stage,
			Sequence:    loc.Sequence,
		})
	}
	return placed, stray
}

// BuildManifest aggregates placed files into a manifest. Project-kind
// categories appear under Projects; every category appears under Categories.
func BuildManifest(placed []CategorizedFile, vocab StageVocabulary, sizes CoverSizeThresholds) *Manifest {
	m := &Manifest{Categories: make(map[string]ManifestCategory)}

	for _, p := range BuildProjects(placed, vocab, sizes) {
		cover := ""
		if p.Cover != nil {
			cover = p.Cover.Path
		}

		var items []string
		for _, stage := range orderedStages(p, vocab) {
			for _, cf := range p.Stages[stage] {
				items = append(items, cf.Path)
			}
		}
		m.Categories[p.Name] = ManifestCategory{CoverImage: cover, Items: items}

		if p.Kind != CategoryKindProject {
			continue
		}
		stages := make(map[Stage][]string, len(p.Stages))
		for stage, bucket := range p.Stages {
			paths := make([]string, len(bucket))
			for i, cf := range bucket {
				paths[i] = cf.Path
			}
			stages[stage] = paths
		}
		m.Projects = append(m.Projects, ManifestProject{
			ID:         p.ID,
			Name:       p.Name,
			CoverImage: cover,
			Stages:     stages,
			Stats:      p.Stats,
		})
	}
	return m
}

// orderedStages returns p's stages in vocabulary order, unknown stages last
func orderedStages(p *Project, vocab StageVocabulary) []Stage {
	var out []Stage
	for _, s := range vocab.Names() {
		if _, ok := p.Stages[s]; ok {
			out = append(out, s)
		}
	}
	for s := range p.Stages {
		if !vocab.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Paths returns every path the manifest references, covers included, sorted
func (m *Manifest) Paths() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range m.Projects {
		add(p.CoverImage)
		for _, bucket := range p.Stages {
			for _, item := range bucket {
				add(item)
			}
		}
	}
	for _, c := range m.Categories {
		add(c.CoverImage)
		for _, item := range c.Items {
			add(item)
		}
	}
	sort.Strings(out)
	return out
}

// InvalidPaths returns references that escape the organized tree or
// that exists reports as absent. exists receives library-relative paths.
func (m *Manifest) InvalidPaths(exists func(libraryRel string) bool) []string {
	var bad []string
	for _, p := range m.Paths() {
		if path.IsAbs(p) || p != path.Clean(p) || p == ".." || strings.HasPrefix(p, "../") {
			bad = append(bad, p)
			continue
		}
		if !exists(p) {
			bad = append(bad, p)
		}
	}
	return bad
}
