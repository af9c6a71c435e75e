package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Stage is a point in the production lifecycle of a piece
type Stage string

const (
	StageRaw       Stage = "raw"
	StageRough     Stage = "rough"
	StageDetailed  Stage = "detailed"
	StageFinishing Stage = "finishing"
	StageFinal     Stage = "final"
)

// DelimitedBonus is added per keyword occurrence bounded by delimiters
const DelimitedBonus = 0.5

// StageRule holds the keywords that vote for a stage
type StageRule struct {
	Name     Stage
	Keywords []string
}

// StageVocabulary is the ordered stage list plus the stage used on ties
type StageVocabulary struct {
	Stages  []StageRule
	Default Stage
}

// DefaultStageVocabulary returns raw, rough, detailed, finishing, final
func DefaultStageVocabulary() StageVocabulary {
	return StageVocabulary{
		Stages: []StageRule{
			{Name: StageRaw, Keywords: []string{"raw", "blank", "unprocessed", "block"}},
			{Name: StageRough, Keywords: []string{"rough", "sketch", "roughout", "wip"}},
			{Name: StageDetailed, Keywords: []string{"detail", "carve", "sculpt", "texture"}},
			{Name: StageFinishing, Keywords: []string{"finishing", "paint", "polish", "sanding", "glaze"}},
			{Name: StageFinal, Keywords: []string{"final", "complete", "finished", "done", "result"}},
		},
		Default: StageDetailed,
	}
}

// Validate checks the vocabulary for empty or duplicate stages and a
// default stage that is part of the list.
func (v StageVocabulary) Validate() error {
	if len(v.Stages) == 0 {
		return fmt.Errorf("stage vocabulary is empty")
	}
	seen := make(map[Stage]bool, len(v.Stages))
	for i, s := range v.Stages {
		name := strings.TrimSpace(string(s.Name))
		if name == "" {
			return fmt.Errorf("stage %d: name is required", i+1)
		}
		if Slugify(name) != name || strings.Contains(name, "_") {
			return fmt.Errorf("stage %q: must be lowercase letters, digits and hyphens", name)
		}
		if seen[s.Name] {
			return fmt.Errorf("stage %q: duplicate name", name)
		}
		seen[s.Name] = true
	}
	if !seen[v.Default] {
		return fmt.Errorf("default stage %q is not in the vocabulary", v.Default)
	}
	return nil
}

// Has reports whether s is in the vocabulary
func (v StageVocabulary) Has(s Stage) bool {
	return v.Index(s) >= 0
}

// Index returns the position of s, or -1
func (v StageVocabulary) Index(s Stage) int {
	for i, rule := range v.Stages {
		if rule.Name == s {
			return i
		}
	}
	return -1
}

// Names returns the stage names in order
func (v StageVocabulary) Names() []Stage {
	out := make([]Stage, len(v.Stages))
	for i, rule := range v.Stages {
		out[i] = rule.Name
	}
	return out
}

// StageAssignment is the stage decision for one file
type StageAssignment struct {
	Stage           Stage
	Confidence      float64
	MatchedKeywords []string
}

// ClassifyStage scores f against every stage in vocab. A keyword scores one
// point per occurrence in the relative path plus DelimitedBonus when the
// occurrence is bounded by delimiters. The highest score wins; a shared top
// score or no match at all yields the default stage.
func ClassifyStage(f MediaFile, vocab StageVocabulary) StageAssignment {
	text := NormalizeText(f.RelativePath)

	type scored struct {
		score   float64
		matched []string
		total   int
	}
	results := make([]scored, len(vocab.Stages))

	for i, rule := range vocab.Stages {
		var r scored
		for _, kw := range rule.Keywords {
			kw = NormalizeText(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			r.total++
			total, delimited := countOccurrences(text, kw)
			if total == 0 {
				continue
			}
			r.score += float64(total) + DelimitedBonus*float64(delimited)
			r.matched = append(r.matched, kw)
		}
		results[i] = r
	}

	best := -1
	tied := false
	for i, r := range results {
		switch {
		case r.score <= 0:
		case best < 0 || r.score > results[best].score:
			best, tied = i, false
		case r.score == results[best].score:
			tied = true
		}
	}

	if best < 0 || tied {
		return StageAssignment{Stage: vocab.Default}
	}

	r := results[best]
	confidence := 0.0
	if r.total > 0 {
		confidence = float64(len(r.matched)) / float64(r.total)
	}
	if confidence > 1 {
		confidence = 1
	}
	sort.Strings(r.matched)

	return StageAssignment{
		Stage:           vocab.Stages[best].Name,
		Confidence:      confidence,
		MatchedKeywords: r.matched,
	}
}
