package survey

import (
	"context"
	"log/slog"
)

// Report is the aggregate result of one full analysis run. Scores are
// aligned with the retained (email-valid) rows; a nil entry marks a
// respondent whose score was blanked.
type Report struct {
	SourceRows          int        `json:"source_rows"`
	AgeHistogram        *Histogram `json:"age_histogram"`
	RetainedRows        int        `json:"retained_rows"`
	TouchedGradeColumns []int      `json:"touched_grade_columns"`
	Scores              []*int     `json:"scores"`
}

// Run executes the full analysis against the dataset at path: load,
// age histogram, email filtering, scoring, then grade imputation.
// Scoring runs before imputation so that the missing-grade tolerance
// still sees the original gaps; imputation runs last and reports which
// columns it touched. Used by both the CLI and the HTTP handler.
func Run(ctx context.Context, path string, maxMissing int, opts ...Option) (*Report, error) {
	a, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := a.Load(); err != nil {
		return nil, err
	}

	report := &Report{SourceRows: a.data.NumRows()}

	a.logger.InfoContext(ctx, "starting analysis run",
		slog.String("path", a.path),
		slog.Int("rows", report.SourceRows),
		slog.Int("max_missing", maxMissing))

	hist, err := a.AgeDistribution()
	if err != nil {
		return nil, err
	}
	report.AgeHistogram = hist

	filtered, err := a.RemoveRowsWithoutValidEmail()
	if err != nil {
		return nil, err
	}
	report.RetainedRows = filtered.NumRows()

	scored, err := a.ScoreSubjects(maxMissing)
	if err != nil {
		return nil, err
	}
	scores, err := scored.Column("score")
	if err != nil {
		return nil, err
	}
	report.Scores = make([]*int, scores.Len())
	for i := 0; i < scores.Len(); i++ {
		if v, ok := scores.Float(i); ok {
			s := int(v)
			report.Scores[i] = &s
		}
	}

	_, touched, err := a.FillMissingGrades()
	if err != nil {
		return nil, err
	}
	report.TouchedGradeColumns = touched

	a.logger.InfoContext(ctx, "analysis run complete",
		slog.Int("retained_rows", report.RetainedRows),
		slog.Any("touched_columns", touched))
	return report, nil
}
