package domain

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// DefaultLibraryDir is the organized tree's directory under the media root
const DefaultLibraryDir = "library"

// DefaultMaxSequenceAttempts bounds the free-slot search per file
const DefaultMaxSequenceAttempts = 9999

// Layout maps categories and stages to canonical root-relative paths:
// <library>/<category-slug>/<stage>/<name>
type Layout struct {
	LibraryDir string
}

// NewLayout returns a layout rooted at libraryDir (slash-separated, relative)
func NewLayout(libraryDir string) Layout {
	libraryDir = strings.Trim(path.Clean("/"+strings.ReplaceAll(libraryDir, "\\", "/")), "/")
	if libraryDir == "" {
		libraryDir = DefaultLibraryDir
	}
	return Layout{LibraryDir: libraryDir}
}

// Dir returns the root-relative directory for a bucket
func (l Layout) Dir(category string, stage Stage) string {
	return path.Join(l.LibraryDir, Slugify(category), Slugify(string(stage)))
}

// CanonicalName builds the organized file name. Topic content is named
// {category}_{subcategory}_{seq}.{ext}, project content
// {project}_{stage}_{seq}.{ext}; seq is zero-padded to three digits.
func CanonicalName(kind CategoryKind, category, subcategory string, stage Stage, seq int, ext string) string {
	middle := Slugify(subcategory)
	if kind == CategoryKindProject {
		middle = string(stage)
	}
	if middle == "" {
		middle = DefaultSubcategory
	}
	name := fmt.Sprintf("%s_%s_%03d", Slugify(category), middle, seq)
	if ext != "" {
		name += "." + ext
	}
	return name
}

// CanonicalLocation is a parsed path inside the organized tree
type CanonicalLocation struct {
	CategorySlug     string
	Stage            Stage
	Middle           string // Subcategory slug or stage, per kind
	Sequence         int
	NamedCanonically bool // Name follows the {category}_{middle}_{seq} form
}

// Parse recognises relPath as <library>/<category>/<stage>/<name>
func (l Layout) Parse(relPath string) (CanonicalLocation, bool) {
	prefix := l.LibraryDir + "/"
	if !strings.HasPrefix(relPath, prefix) {
		return CanonicalLocation{}, false
	}
	parts := strings.Split(strings.TrimPrefix(relPath, prefix), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return CanonicalLocation{}, false
	}

	loc := CanonicalLocation{CategorySlug: parts[0], Stage: Stage(parts[1])}

	name := parts[2]
	stem := strings.TrimSuffix(name, path.Ext(name))
	fields := strings.Split(stem, "_")
	if len(fields) == 3 && fields[0] == loc.CategorySlug && fields[1] != "" && len(fields[2]) >= 3 && isAllDigits(fields[2]) {
		if seq, ok := parseDigits(fields[2]); ok && seq > 0 {
			loc.Middle = fields[1]
			loc.Sequence = seq
			loc.NamedCanonically = true
		}
	}
	return loc, true
}

// ClassifyLocation derives classification and stage from a file inside the
// organized tree. ok is false when the file is not at a canonical location
// or its stage is outside vocab.
func (l Layout) ClassifyLocation(f MediaFile, tax *Taxonomy, vocab StageVocabulary) (Classification, StageAssignment, bool) {
	loc, ok := l.Parse(f.RelativePath)
	if !ok || !vocab.Has(loc.Stage) {
		return Classification{}, StageAssignment{}, false
	}

	category := loc.CategorySlug
	subcategory := DefaultSubcategory
	rule, known := tax.Category(loc.CategorySlug)
	if known {
		category = rule.Name
	}
	if known && rule.Kind == CategoryKindTopic {
		if loc.NamedCanonically {
			if name, found := rule.SubcategoryBySlug(loc.Middle); found {
				subcategory = name
			} else {
				subcategory = loc.Middle
			}
		} else {
			subcategory = rule.MatchSubcategory(NormalizeText(f.RelativePath))
		}
	} else if !known && loc.NamedCanonically && loc.Middle != string(loc.Stage) {
		subcategory = loc.Middle
	}

	cls := Classification{
		Category:       category,
		Subcategory:    subcategory,
		Confidence:     1.0,
		MatchedSignals: []string{SignalCanonical},
		Source:         SourceAuto,
	}
	stage := StageAssignment{
		Stage:           loc.Stage,
		Confidence:      1.0,
		MatchedKeywords: []string{SignalCanonical},
	}
	return cls, stage, true
}

// PlanMove builds the operation for one classified file. A file already at
// its canonical path is returned skipped with its existing sequence number;
// anything else is planned and waits for AssignSequences.
func (l Layout) PlanMove(f MediaFile, cls Classification, stage StageAssignment, kind CategoryKind) *MoveOperation {
	op := &MoveOperation{
		File:              f,
		Classification:    cls,
		StageAssignment:   stage,
		TargetCategory:    cls.Category,
		TargetSubcategory: cls.Subcategory,
		TargetStage:       stage.Stage,
		Kind:              kind,
		Status:            MoveStatusPlanned,
	}

	loc, ok := l.Parse(f.RelativePath)
	if !ok || !loc.NamedCanonically {
		return op
	}
	dir := l.Dir(op.TargetCategory, op.TargetStage)
	if path.Dir(f.RelativePath) != dir {
		return op
	}
	want := CanonicalName(kind, op.TargetCategory, op.TargetSubcategory, op.TargetStage, loc.Sequence, f.Extension)
	if want != f.FileName {
		return op
	}

	op.SequenceNumber = loc.Sequence
	op.NewFileName = f.FileName
	op.TargetPath = f.RelativePath
	op.Status = MoveStatusSkipped
	op.Reason = ReasonAlreadyOrganized
	return op
}

// AssignSequences numbers the planned operations in each (category, stage)
// bucket. Within a bucket, files carrying a numeric token come first in
// ascending token order, then by modification time, then by file name and
// relative path. Numbers start at 1 and skip any number held by a skipped
// operation, any target path exists reports as occupied, and any path
// already reserved in this plan. An operation that finds no free slot in
// maxAttempts tries is marked failed.
func (l Layout) AssignSequences(ops []*MoveOperation, exists func(relPath string) bool, maxAttempts int) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxSequenceAttempts
	}

	type bucketKey struct {
		category string
		stage    Stage
	}
	buckets := make(map[bucketKey][]*MoveOperation)
	var order []bucketKey
	held := make(map[bucketKey]map[int]bool)
	reserved := make(map[string]bool)

	for _, op := range ops {
		key := bucketKey{Slugify(op.TargetCategory), op.TargetStage}
		if op.Status == MoveStatusSkipped {
			if held[key] == nil {
				held[key] = make(map[int]bool)
			}
			held[key][op.SequenceNumber] = true
			reserved[op.TargetPath] = true
			continue
		}
		if op.Status != MoveStatusPlanned {
			continue
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], op)
	}

	for _, key := range order {
		group := buckets[key]
		sort.SliceStable(group, func(i, j int) bool {
			return sequenceLess(group[i].File, group[j].File)
		})

		next := 1
		for _, op := range group {
			dir := l.Dir(op.TargetCategory, op.TargetStage)
			assigned := false
			for attempt := 0; attempt < maxAttempts; attempt++ {
				seq := next
				next++
				if held[key][seq] {
					continue
				}
				name := CanonicalName(op.Kind, op.TargetCategory, op.TargetSubcategory, op.TargetStage, seq, op.File.Extension)
				target := path.Join(dir, name)
				if reserved[target] || (exists != nil && exists(target)) {
					continue
				}
				reserved[target] = true
				op.SequenceNumber = seq
				op.NewFileName = name
				op.TargetPath = target
				assigned = true
				break
			}
			if !assigned {
				op.Status = MoveStatusFailed
				op.Reason = fmt.Sprintf("no free sequence number in %s after %d attempts", dir, maxAttempts)
			}
		}
	}
}

func sequenceLess(a, b MediaFile) bool {
	na, okA := NumericToken(a.Stem())
	nb, okB := NumericToken(b.Stem())
	if okA != okB {
		return okA
	}
	if okA && na != nb {
		return na < nb
	}
	if !a.ModifiedAt.Equal(b.ModifiedAt) {
		return a.ModifiedAt.Before(b.ModifiedAt)
	}
	if a.FileName != b.FileName {
		return a.FileName < b.FileName
	}
	return a.RelativePath < b.RelativePath
}
