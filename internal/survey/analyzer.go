// Package survey implements the questionnaire cleaning and scoring
// operations: age histogram, email-validity filtering, missing-grade
// imputation, and per-respondent scoring with a missing-value
// tolerance. All operations work against one in-memory dataset owned
// by an Analysis handle; there is no concurrency and no persistence.
package survey

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"surveycli/internal/dataset"
	apperrors "surveycli/internal/errors"
)

// Analysis owns a loaded questionnaire dataset and exposes the four
// analysis operations. Construction validates the file path; parsing
// happens in Load.
type Analysis struct {
	path     string
	data     *dataset.Dataset
	logger   *slog.Logger
	renderer Renderer
}

// Option configures an Analysis
type Option func(*Analysis)

// WithLogger sets the logger used by the analysis operations
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analysis) { a.logger = logger }
}

// WithRenderer sets the chart renderer invoked by AgeDistribution
func WithRenderer(r Renderer) Option {
	return func(a *Analysis) { a.renderer = r }
}

// New creates an analysis handle for the dataset at path. The path is
// resolved to an absolute path and must reference an existing file;
// the file content is not touched until Load.
func New(path string, opts ...Option) (*Analysis, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.NewValidationError("given file doesn't exist").WithContext("path", path)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, apperrors.NewValidationError("given file doesn't exist").WithContext("path", abs)
	}

	a := &Analysis{path: abs, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Path returns the resolved absolute dataset path
func (a *Analysis) Path() string { return a.path }

// Data returns the owned dataset, nil before Load. Mutating operations
// change this table in place.
func (a *Analysis) Data() *dataset.Dataset { return a.data }

// Load parses the JSON file into the owned dataset, replacing any
// previously loaded content. Missing expected columns do not fail
// here; they surface when an operation first accesses them.
func (a *Analysis) Load() error {
	d, err := dataset.Load(a.path)
	if err != nil {
		return err
	}
	a.data = d
	a.logger.Info("dataset loaded",
		slog.String("path", a.path),
		slog.Int("rows", d.NumRows()),
		slog.Int("columns", d.NumCols()))
	return nil
}

func (a *Analysis) requireData() error {
	if a.data == nil {
		return apperrors.NewValidationError("dataset not loaded, call Load first")
	}
	return nil
}

// AgeDistribution partitions the age column into 10 equal-width bins
// over [0,100] and returns the bin counts together with the 11 bin
// edges. Missing ages and ages outside the range are counted in no
// bin. When a renderer is configured the histogram is also drawn; a
// render failure is logged but does not fail the computation.
func (a *Analysis) AgeDistribution() (*Histogram, error) {
	if err := a.requireData(); err != nil {
		return nil, err
	}
	ages, err := a.data.Column("age")
	if err != nil {
		return nil, err
	}

	binWidth := (ageMax - ageMin) / float64(ageBinCount)
	edges := make([]float64, ageBinCount+1)
	for i := range edges {
		edges[i] = ageMin + float64(i)*binWidth
	}

	counts := make([]int, ageBinCount)
	for i := 0; i < ages.Len(); i++ {
		v, ok := ages.Float(i)
		if !ok || v < ageMin || v > ageMax {
			continue
		}
		bin := int((v - ageMin) / binWidth)
		if bin == ageBinCount { // the final bin is closed on the right
			bin--
		}
		counts[bin]++
	}

	h := &Histogram{Counts: counts, Edges: edges}
	a.logger.Info("computed age distribution",
		slog.Int("rows", a.data.NumRows()),
		slog.Int("binned", h.Total()))

	if a.renderer != nil {
		if err := a.renderer.RenderHistogram("Age distribution", counts, edges); err != nil {
			a.logger.Warn("histogram render failed", slog.String("error", err.Error()))
		}
	}
	return h, nil
}

// RemoveRowsWithoutValidEmail drops every row whose email cell does
// not fully match the validation pattern. A missing or non-text email
// counts as invalid. The owned dataset is mutated in place and keeps
// its original index labels; the returned table is an independent copy
// with the index reset to 0..k-1.
func (a *Analysis) RemoveRowsWithoutValidEmail() (*dataset.Dataset, error) {
	if err := a.requireData(); err != nil {
		return nil, err
	}
	emails, err := a.data.Column("email")
	if err != nil {
		return nil, err
	}

	keep := make([]bool, a.data.NumRows())
	removed := 0
	for i := range keep {
		s, ok := emails.String(i)
		keep[i] = ok && emailPattern.MatchString(s)
		if !keep[i] {
			removed++
		}
	}
	a.data.Filter(keep)

	a.logger.Info("filtered invalid emails",
		slog.Int("removed", removed),
		slog.Int("remaining", a.data.NumRows()))

	out := a.data.Copy()
	out.ResetIndex()
	return out, nil
}

// FillMissingGrades replaces each missing grade cell with the mean of
// the values present in that same column. Only columns holding at
// least one missing value are touched; the returned positions are the
// sorted 0-based offsets of those columns within the q1..q5 block. The
// owned dataset is mutated in place.
func (a *Analysis) FillMissingGrades() (*dataset.Dataset, []int, error) {
	if err := a.requireData(); err != nil {
		return nil, nil, err
	}

	touched := make([]int, 0, len(GradeColumns))
	for pos, name := range GradeColumns {
		col, err := a.data.Column(name)
		if err != nil {
			return nil, nil, err
		}
		if col.MissingCount() == 0 {
			continue
		}
		touched = append(touched, pos)

		mean, ok := col.Mean()
		if !ok {
			// every cell missing, no mean to impute from
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if col.IsMissing(i) {
				col.SetFloat(i, mean)
			}
		}
	}

	a.logger.Info("imputed missing grades", slog.Any("touched_columns", touched))
	return a.data, touched, nil
}

// ScoreSubjects computes each respondent's score, the floored mean of
// the available q1..q5 grades, and stores it in a "score" column. Rows
// with more than maxMissing missing grades get a missing score
// instead. Scores must fit in [0, ScoreMax]; a floor outside that
// range fails the whole operation with a RANGE error. The owned
// dataset is mutated in place and returned.
func (a *Analysis) ScoreSubjects(maxMissing int) (*dataset.Dataset, error) {
	if err := a.requireData(); err != nil {
		return nil, err
	}
	if maxMissing < 0 {
		return nil, apperrors.NewValidationError("maxMissing must be non-negative")
	}

	var grades [len(GradeColumns)]*dataset.Column
	for i, name := range GradeColumns {
		col, err := a.data.Column(name)
		if err != nil {
			return nil, err
		}
		grades[i] = col
	}

	rows := a.data.NumRows()
	vals := make([]float64, rows)
	miss := make([]bool, rows)
	blanked := 0
	for i := 0; i < rows; i++ {
		sum := 0.0
		present := 0
		for _, col := range grades {
			if v, ok := col.Float(i); ok {
				sum += v
				present++
			}
		}
		missing := len(GradeColumns) - present
		if missing > maxMissing || present == 0 {
			vals[i] = math.NaN()
			miss[i] = true
			blanked++
			continue
		}
		score := math.Floor(sum / float64(present))
		if score < 0 || score > ScoreMax {
			return nil, apperrors.NewRangeError(
				fmt.Sprintf("row %d: score %.0f not representable in [0, %d]", i, score, ScoreMax))
		}
		vals[i] = score
	}

	if err := a.data.SetNumericColumn("score", vals, miss); err != nil {
		return nil, err
	}

	a.logger.Info("scored subjects",
		slog.Int("rows", rows),
		slog.Int("blanked", blanked),
		slog.Int("max_missing", maxMissing))
	return a.data, nil
}
