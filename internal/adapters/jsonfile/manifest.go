package jsonfile

import (
	"io"

	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// ManifestDocument is the contract consumed by the presentation layer
type ManifestDocument struct {
	Projects   []ManifestProjectDoc           `json:"projects"`
	Categories map[string]ManifestCategoryDoc `json:"categories"`
}

type ManifestProjectDoc struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	CoverImage *string             `json:"coverImage"`
	Stages     map[string][]string `json:"stages"`
	Stats      ManifestStatsDoc    `json:"stats"`
}

type ManifestStatsDoc struct {
	Total           int            `json:"total"`
	PerStage        map[string]int `json:"perStage"`
	CompletionLevel string         `json:"completionLevel,omitempty"`
	Completion      float64        `json:"completion"`
}

type ManifestCategoryDoc struct {
	CoverImage *string  `json:"coverImage"`
	Items      []string `json:"items"`
}

// NewManifestDocument converts a manifest; a missing cover encodes as null
func NewManifestDocument(m *domain.Manifest) ManifestDocument {
	doc := ManifestDocument{
		Projects:   make([]ManifestProjectDoc, 0, len(m.Projects)),
		Categories: make(map[string]ManifestCategoryDoc, len(m.Categories)),
	}
	for _, p := range m.Projects {
		stages := make(map[string][]string, len(p.Stages))
		for stage, files := range p.Stages {
			stages[string(stage)] = files
		}
		perStage := make(map[string]int, len(p.Stats.PerStage))
		for stage, n := range p.Stats.PerStage {
			perStage[string(stage)] = n
		}
		doc.Projects = append(doc.Projects, ManifestProjectDoc{
			ID:         p.ID,
			Name:       p.Name,
			CoverImage: optional(p.CoverImage),
			Stages:     stages,
			Stats: ManifestStatsDoc{
				Total:           p.Stats.Total,
				PerStage:        perStage,
				CompletionLevel: string(p.Stats.CompletionLevel),
				Completion:      p.Stats.Completion,
			},
		})
	}
	for name, c := range m.Categories {
		items := c.Items
		if items == nil {
			items = []string{}
		}
		doc.Categories[name] = ManifestCategoryDoc{CoverImage: optional(c.CoverImage), Items: items}
	}
	return doc
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// EncodeManifest writes the manifest to w
func EncodeManifest(w io.Writer, m *domain.Manifest) error {
	return encode(w, NewManifestDocument(m))
}

// SaveManifest writes the manifest to path atomically
func SaveManifest(path string, m *domain.Manifest) error {
	return writeAtomic(path, NewManifestDocument(m))
}

// ManifestFile writes the manifest to a fixed path
type ManifestFile struct {
	path string
}

var _ ports.ManifestWriter = (*ManifestFile)(nil)

func NewManifestFile(path string) *ManifestFile {
	return &ManifestFile{path: path}
}

func (m *ManifestFile) WriteManifest(manifest *domain.Manifest) (string, error) {
	if err := SaveManifest(m.path, manifest); err != nil {
		return "", err
	}
	return m.path, nil
}
