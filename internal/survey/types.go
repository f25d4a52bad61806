package survey

import (
	"regexp"
)

const (
	// Age histogram range and bin count; ages outside [0,100] fall out
	// of every bin.
	ageMin      = 0.0
	ageMax      = 100.0
	ageBinCount = 10

	// ScoreMax is the largest representable score value
	ScoreMax = 255

	// DefaultMaxMissingGrades is the number of missing grades tolerated
	// per respondent before the score is blanked.
	DefaultMaxMissingGrades = 1
)

// GradeColumns enumerates the five grade columns in their fixed order.
// Operations iterate this list explicitly rather than slicing by label
// range.
var GradeColumns = [5]string{"q1", "q2", "q3", "q4", "q5"}

// emailPattern must match the whole address: word characters with
// optional single [.-] separators, an @, a domain of the same shape,
// and one or more dot-separated 1-3 character tail segments.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{1,3})+$`)

// Histogram holds age distribution bin counts and the bin edges that
// produced them. Edges has exactly one more entry than Counts.
type Histogram struct {
	Counts []int     `json:"counts"`
	Edges  []float64 `json:"edges"`
}

// Total returns the number of observations across all bins
func (h *Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// Renderer draws a computed histogram. Implementations live outside
// this package (see internal/chart); rendering is a side effect and
// never feeds back into analysis results.
type Renderer interface {
	RenderHistogram(title string, counts []int, edges []float64) error
}
