package domain

import "strings"

// CoverSizeThresholds grant the size tiebreak bonus
type CoverSizeThresholds struct {
	LargeBytes  int64 // +2 at or above
	MediumBytes int64 // +1 at or above
}

// DefaultCoverSizeThresholds returns 5 MiB / 1 MiB
func DefaultCoverSizeThresholds() CoverSizeThresholds {
	return CoverSizeThresholds{LargeBytes: 5 << 20, MediumBytes: 1 << 20}
}

// CoverCandidate pairs a file with its stage
type CoverCandidate struct {
	File  MediaFile
	Stage Stage
}

var stageCoverBonus = map[Stage]int{
	StageFinal:     10,
	StageFinishing: 8,
	StageDetailed:  5,
}

type nameWeight struct {
	words  []string
	weight int
}

var coverNameWeights = []nameWeight{
	{words: []string{"final", "complete"}, weight: 8},
	{words: []string{"done", "result"}, weight: 6},
	{words: []string{"start"}, weight: -4},
	{words: []string{"progress"}, weight: -3},
	{words: []string{"wip"}, weight: -2},
}

// CoverScore returns the heuristic score of one candidate
func CoverScore(c CoverCandidate, sizes CoverSizeThresholds) int {
	score := stageCoverBonus[c.Stage]

	name := NormalizeText(c.File.FileName)
	for _, nw := range coverNameWeights {
		for _, w := range nw.words {
			if strings.Contains(name, w) {
				score += nw.weight
				break
			}
		}
	}

	switch {
	case sizes.LargeBytes > 0 && c.File.SizeBytes >= sizes.LargeBytes:
		score += 2
	case sizes.MediumBytes > 0 && c.File.SizeBytes >= sizes.MediumBytes:
		score += 1
	}
	return score
}

// SelectCover returns the highest scoring image among candidates, or nil
// when none is an image. The earliest candidate wins exact ties.
func SelectCover(candidates []CoverCandidate, sizes CoverSizeThresholds) *MediaFile {
	var best *MediaFile
	bestScore := 0
	for i := range candidates {
		c := candidates[i]
		if !c.File.IsImage() {
			continue
		}
		score := CoverScore(c, sizes)
		if best == nil || score > bestScore {
			f := c.File
			best, bestScore = &f, score
		}
	}
	return best
}
