package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"mediasort/internal/domain"
)

// TaxonomyFile is the layout of an external taxonomy TOML file.
type TaxonomyFile struct {
	Fallback   string           `toml:"fallback"`
	Categories []CategoryConfig `toml:"categories"`
}

// LoadTaxonomyFile parses an external taxonomy file. Unknown keys are
// rejected so typos in rule names surface early.
func LoadTaxonomyFile(path string) (*TaxonomyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	var file TaxonomyFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	return &file, nil
}

// EncodeTaxonomy renders a compiled taxonomy back to taxonomy-file TOML.
func EncodeTaxonomy(tax *domain.Taxonomy) ([]byte, error) {
	file := TaxonomyFile{Fallback: tax.Fallback()}
	for _, rule := range tax.Categories() {
		if tax.IsFallback(rule.Name) && len(rule.Keywords)+len(rule.Patterns)+len(rule.Folders) == 0 {
			continue
		}
		cat := CategoryConfig{
			Name:     rule.Name,
			Kind:     string(rule.Kind),
			Keywords: rule.Keywords,
			Patterns: rule.Patterns,
			Folders:  rule.Folders,
		}
		for _, sub := range rule.Subcategories {
			cat.Subcategories = append(cat.Subcategories, SubcategoryConfig{Name: sub.Name, Keywords: sub.Keywords})
		}
		file.Categories = append(file.Categories, cat)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encode taxonomy: %w", err)
	}
	return buf.Bytes(), nil
}
