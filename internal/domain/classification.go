package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Signal weights for additive category scoring
const (
	KeywordWeight = 0.3
	PatternWeight = 0.2
	FolderWeight  = 0.4
)

// ClassificationSource records where a classification came from
type ClassificationSource string

const (
	SourceAuto     ClassificationSource = "auto"
	SourceOverride ClassificationSource = "override"
)

// Signal names attached to classifications not produced by scoring
const (
	SignalFallback  = "fallback"
	SignalOverride  = "override"
	SignalCanonical = "location:canonical"
)

// Classification is the category decision for one file
type Classification struct {
	Category       string
	Subcategory    string
	Confidence     float64
	MatchedSignals []string // Sorted, unique
	Source         ClassificationSource
}

// Override is a manual classification keyed by relative path or file name.
// It wins over any automatic result for the same file.
type Override struct {
	Key         string
	Category    string
	Subcategory string
	Stage       Stage // Optional
	Notes       string
	CreatedAt   time.Time
}

// SameAs reports whether two overrides carry the same decision
func (o Override) SameAs(other Override) bool {
	return o.Key == other.Key &&
		Slugify(o.Category) == Slugify(other.Category) &&
		Slugify(o.Subcategory) == Slugify(other.Subcategory) &&
		o.Stage == other.Stage &&
		o.Notes == other.Notes
}

// Classification converts the override into its verbatim classification
func (o Override) Classification() Classification {
	sub := o.Subcategory
	if strings.TrimSpace(sub) == "" {
		sub = DefaultSubcategory
	}
	return Classification{
		Category:       o.Category,
		Subcategory:    sub,
		Confidence:     1.0,
		MatchedSignals: []string{SignalOverride},
		Source:         SourceOverride,
	}
}

// OverrideSet indexes overrides by key
type OverrideSet map[string]Override

// NewOverrideSet builds a set; later entries replace earlier ones
func NewOverrideSet(overrides []Override) OverrideSet {
	set := make(OverrideSet, len(overrides))
	for _, o := range overrides {
		set[o.Key] = o
	}
	return set
}

// Lookup finds the override for a file, by relative path first and then by file name
func (s OverrideSet) Lookup(f MediaFile) (Override, bool) {
	if o, ok := s[f.RelativePath]; ok {
		return o, true
	}
	if o, ok := s[f.FileName]; ok {
		return o, true
	}
	return Override{}, false
}

// Classify scores f against every category in tax and returns the winner.
// An override for the file short-circuits scoring. Ties go to the category
// declared first; a file scoring zero everywhere lands in the fallback.
func Classify(f MediaFile, tax *Taxonomy, overrides OverrideSet) Classification {
	if o, ok := overrides.Lookup(f); ok {
		cls := o.Classification()
		cls.Category = tax.CanonicalName(cls.Category)
		return cls
	}

	text := NormalizeText(f.RelativePath)
	segments := make(map[string]bool, len(f.DirectorySegments))
	for _, seg := range f.DirectorySegments {
		segments[NormalizeText(seg)] = true
	}

	bestIdx := -1
	bestScore := 0.0
	var bestSignals []string

	for i, rule := range tax.categories {
		score, signals := scoreCategory(rule, text, segments)
		if score > bestScore {
			bestIdx, bestScore, bestSignals = i, score, signals
		}
	}

	if bestIdx < 0 {
		return Classification{
			Category:       tax.fallback,
			Subcategory:    DefaultSubcategory,
			Confidence:     0,
			MatchedSignals: []string{SignalFallback},
			Source:         SourceAuto,
		}
	}

	rule := tax.categories[bestIdx]
	return Classification{
		Category:       rule.Name,
		Subcategory:    rule.MatchSubcategory(text),
		Confidence:     bestScore,
		MatchedSignals: bestSignals,
		Source:         SourceAuto,
	}
}

func scoreCategory(rule CategoryRule, text string, segments map[string]bool) (float64, []string) {
	var score float64
	signals := make(map[string]bool)

	for _, kw := range rule.Keywords {
		kw = NormalizeText(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) && !signals["keyword:"+kw] {
			signals["keyword:"+kw] = true
			score += KeywordWeight
		}
	}
	for i, re := range rule.compiled {
		if re.MatchString(text) {
			signals["pattern:"+rule.Patterns[i]] = true
			score += PatternWeight
		}
	}
	for _, folder := range rule.Folders {
		folder = NormalizeText(strings.TrimSpace(folder))
		if folder != "" && segments[folder] && !signals["folder:"+folder] {
			signals["folder:"+folder] = true
			score += FolderWeight
		}
	}

	return roundScore(score), sortedKeys(signals)
}

// MatchSubcategory returns the subcategory with the most keyword hits in
// text, first declared on ties, or DefaultSubcategory when none match.
func (r CategoryRule) MatchSubcategory(text string) string {
	best := DefaultSubcategory
	bestHits := 0
	for _, sub := range r.Subcategories {
		hits := 0
		for _, kw := range sub.Keywords {
			kw = NormalizeText(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = sub.Name, hits
		}
	}
	return best
}

// SubcategoryBySlug resolves a slugged subcategory back to its declared name
func (r CategoryRule) SubcategoryBySlug(slug string) (string, bool) {
	for _, sub := range r.Subcategories {
		if Slugify(sub.Name) == slug {
			return sub.Name, true
		}
	}
	if slug == DefaultSubcategory {
		return DefaultSubcategory, true
	}
	return "", false
}

func roundScore(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HistoryEntry is one recorded classification of a file in a committed run
type HistoryEntry struct {
	RunID          string
	FileID         string
	Classification Classification
	Stage          StageAssignment
	RecordedAt     time.Time
}
