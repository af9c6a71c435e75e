package domain

import "sort"

// CategorizedFile is a file with its final placement, used to aggregate
// projects from either planned operations or the organized tree.
type CategorizedFile struct {
	File        MediaFile
	Path        string // Path reported to consumers
	Category    string
	Kind        CategoryKind
	Subcategory string
	Stage       Stage
	Sequence    int
}

// ProjectStats counts a project's files per stage
type ProjectStats struct {
	Total           int
	PerStage        map[Stage]int
	CompletionLevel Stage   // Latest stage holding at least one file
	Completion      float64 // Position of CompletionLevel in the vocabulary, 0..1
}

// Project aggregates every file placed in one category
type Project struct {
	ID     string // Category slug
	Name   string
	Kind   CategoryKind
	Stages map[Stage][]CategorizedFile
	Files  []CategorizedFile // In scan order
	Cover  *CategorizedFile
	Stats  ProjectStats
}

// BuildProjects groups files by category and computes each group's cover
// and stats. Projects are returned sorted by ID; files within a stage are
// ordered by sequence number, then path.
func BuildProjects(files []CategorizedFile, vocab StageVocabulary, sizes CoverSizeThresholds) []*Project {
	byID := make(map[string]*Project)
	for _, cf := range files {
		id := Slugify(cf.Category)
		p, ok := byID[id]
		if !ok {
			p = &Project{
				ID:     id,
				Name:   cf.Category,
				Kind:   cf.Kind,
				Stages: make(map[Stage][]CategorizedFile),
			}
			byID[id] = p
		}
		p.Files = append(p.Files, cf)
		p.Stages[cf.Stage] = append(p.Stages[cf.Stage], cf)
	}

	out := make([]*Project, 0, len(byID))
	for _, p := range byID {
		for stage, bucket := range p.Stages {
			sort.SliceStable(bucket, func(i, j int) bool {
				if bucket[i].Sequence != bucket[j].Sequence {
					return bucket[i].Sequence < bucket[j].Sequence
				}
				return bucket[i].Path < bucket[j].Path
			})
			p.Stages[stage] = bucket
		}
		p.Cover = projectCover(p.Files, sizes)
		p.Stats = projectStats(p, vocab)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func projectCover(files []CategorizedFile, sizes CoverSizeThresholds) *CategorizedFile {
	candidates := make([]CoverCandidate, len(files))
	for i, cf := range files {
		candidates[i] = CoverCandidate{File: cf.File, Stage: cf.Stage}
	}
	cover := SelectCover(candidates, sizes)
	if cover == nil {
		return nil
	}
	for i := range files {
		if files[i].File.AbsolutePath == cover.AbsolutePath {
			cf := files[i]
			return &cf
		}
	}
	return nil
}

func projectStats(p *Project, vocab StageVocabulary) ProjectStats {
	stats := ProjectStats{
		Total:    len(p.Files),
		PerStage: make(map[Stage]int, len(vocab.Stages)),
	}
	latest := -1
	for stage, bucket := range p.Stages {
		stats.PerStage[stage] = len(bucket)
		if idx := vocab.Index(stage); idx > latest {
			latest = idx
		}
	}
	if latest >= 0 {
		stats.CompletionLevel = vocab.Stages[latest].Name
		stats.Completion = float64(latest+1) / float64(len(vocab.Stages))
	}
	return stats
}

// CategorizedFromOperations converts operations into aggregation input.
// Failed operations are left out; others report their target path.
func CategorizedFromOperations(ops []*MoveOperation) []CategorizedFile {
	out := make([]CategorizedFile, 0, len(ops))
	for _, op := range ops {
		if op.Status == MoveStatusFailed || op.TargetPath == "" {
			continue
		}
		out = append(out, CategorizedFile{
			File:        op.File,
			Path:        op.TargetPath,
			Category:    op.TargetCategory,
			Kind:        op.Kind,
			Subcategory: op.TargetSubcategory,
			Stage:       op.TargetStage,
			Sequence:    op.SequenceNumber,
		})
	}
	return out
}

// CoverPaths maps each project name to its cover path
func CoverPaths(projects []*Project) map[string]string {
	out := make(map[string]string, len(projects))
	for _, p := range projects {
		if p.Cover != nil {
			out[p.Name] = p.Cover.Path
		}
	}
	return out
}
