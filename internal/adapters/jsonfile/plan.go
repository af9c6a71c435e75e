package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"mediasort/internal/domain"
)

// PlanEntry is one classification carried over from a prior run
type PlanEntry struct {
	Path         string `json:"path,omitempty"`
	RelativePath string `json:"relativePath,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory,omitempty"`
	Stage        string `json:"stage,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

type planDocument struct {
	Overrides []PlanEntry `json:"overrides"`
}

// Key returns the override key: the relative path when given, else the
// file name
func (e PlanEntry) Key() string {
	for _, candidate := range []string{e.Path, e.RelativePath, e.FileName} {
		candidate = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(candidate), "\\", "/"), "./")
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// DecodePlan reads a prior-run plan: either a JSON array of entries or an
// object with an "overrides" array. Entries keep their document order.
func DecodePlan(r io.Reader, now time.Time) ([]domain.Override, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("plan document is empty")
	}

	var entries []PlanEntry
	switch data[0] {
	case '[':
		err = json.Unmarshal(data, &entries)
	case '{':
		var doc planDocument
		err = json.Unmarshal(data, &doc)
		entries = doc.Overrides
	default:
		err = errors.New("expected a JSON array or an object with overrides")
	}
	if err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	out := make([]domain.Override, 0, len(entries))
	for i, e := range entries {
		key := e.Key()
		if key == "" {
			return nil, fmt.Errorf("plan entry %d: path or fileName is required", i+1)
		}
		if strings.TrimSpace(e.Category) == "" {
			return nil, fmt.Errorf("plan entry %d (%s): category is required", i+1, key)
		}
		out = append(out, domain.Override{
			Key:         key,
			Category:    strings.TrimSpace(e.Category),
			Subcategory: strings.TrimSpace(e.Subcategory),
			Stage:       domain.Stage(strings.ToLower(strings.TrimSpace(e.Stage))),
			Notes:       strings.TrimSpace(e.Notes),
			CreatedAt:   now,
		})
	}
	return out, nil
}
