package survey

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "surveycli/internal/errors"
)

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadAnalysis(t *testing.T, content string, opts ...Option) *Analysis {
	t.Helper()
	a, err := New(writeDataset(t, content), opts...)
	require.NoError(t, err)
	require.NoError(t, a.Load())
	return a
}

func TestNew_NonExistentPath(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "absolute", path: "/nonexistent/dir/data.json"},
		{name: "relative", path: "no-such-file.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.path)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
		})
	}
}

func TestNew_DirectoryRejected(t *testing.T) {
	_, err := New(t.TempDir())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestNew_ResolvesAbsolutePath(t *testing.T) {
	path := writeDataset(t, `[]`)
	a, err := New(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(a.Path()))
}

func TestOperationsBeforeLoad(t *testing.T) {
	a, err := New(writeDataset(t, `[]`))
	require.NoError(t, err)

	_, histErr := a.AgeDistribution()
	assert.True(t, apperrors.IsType(histErr, apperrors.ErrTypeValidation))
	_, emailErr := a.RemoveRowsWithoutValidEmail()
	assert.True(t, apperrors.IsType(emailErr, apperrors.ErrTypeValidation))
	_, _, fillErr := a.FillMissingGrades()
	assert.True(t, apperrors.IsType(fillErr, apperrors.ErrTypeValidation))
	_, scoreErr := a.ScoreSubjects(DefaultMaxMissingGrades)
	assert.True(t, apperrors.IsType(scoreErr, apperrors.ErrTypeValidation))
}

func TestLoad_ReplacesPriorContent(t *testing.T) {
	a := loadAnalysis(t, `[{"age": 10}, {"age": 20}]`)
	assert.Equal(t, 2, a.Data().NumRows())

	require.NoError(t, a.Load())
	assert.Equal(t, 2, a.Data().NumRows())
}

type recordingRenderer struct {
	calls  int
	counts []int
	edges  []float64
	err    error
}

func (r *recordingRenderer) RenderHistogram(title string, counts []int, edges []float64) error {
	r.calls++
	r.counts = counts
	r.edges = edges
	return r.err
}

func TestAgeDistribution(t *testing.T) {
	// ages 5, 15, 95 land in bins 0, 1, 9; 105 is clipped out
	a := loadAnalysis(t, `[
		{"age": 5}, {"age": 15}, {"age": 95}, {"age": 105}
	]`)

	h, err := a.AgeDistribution()
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 0, 0, 0, 0, 0, 0, 0, 1}, h.Counts)
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, h.Edges)
	assert.Equal(t, 3, h.Total())
}

func TestAgeDistribution_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		bin  int // -1 means excluded
	}{
		{name: "lower edge", age: 0, bin: 0},
		{name: "inner edge goes right", age: 10, bin: 1},
		{name: "upper edge included in last bin", age: 100, bin: 9},
		{name: "just below inner edge", age: 9.99, bin: 0},
		{name: "negative excluded", age: -1, bin: -1},
		{name: "above range excluded", age: 100.5, bin: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := loadAnalysis(t, `[{"age": `+floatLit(tt.age)+`}]`)
			h, err := a.AgeDistribution()
			require.NoError(t, err)

			if tt.bin < 0 {
				assert.Equal(t, 0, h.Total())
				return
			}
			assert.Equal(t, 1, h.Counts[tt.bin])
			assert.Equal(t, 1, h.Total())
		})
	}
}

func floatLit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func TestAgeDistribution_MissingAgesExcluded(t *testing.T) {
	a := loadAnalysis(t, `[{"age": 50}, {"age": null}]`)
	h, err := a.AgeDistribution()
	require.NoError(t, err)
	assert.Equal(t, 1, h.Total())
	assert.Equal(t, 1, h.Counts[5])
}

func TestAgeDistribution_MissingColumn(t *testing.T) {
	a := loadAnalysis(t, `[{"email": "a@b.com"}]`)
	_, err := a.AgeDistribution()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFieldMissing))
}

func TestAgeDistribution_RendersChart(t *testing.T) {
	rec := &recordingRenderer{}
	a := loadAnalysis(t, `[{"age": 42}]`, WithRenderer(rec))

	h, err := a.AgeDistribution()
	require.NoError(t, err)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, h.Counts, rec.counts)
	assert.Equal(t, h.Edges, rec.edges)
}

func TestAgeDistribution_RenderFailureDoesNotFail(t *testing.T) {
	rec := &recordingRenderer{err: assert.AnError}
	a := loadAnalysis(t, `[{"age": 42}]`, WithRenderer(rec))

	h, err := a.AgeDistribution()
	require.NoError(t, err)
	assert.Equal(t, 1, h.Total())
}

func TestRemoveRowsWithoutValidEmail(t *testing.T) {
	// only the first row carries a valid address; the third is null
	a := loadAnalysis(t, `[
		{"age": 20, "email": "a@b.com"},
		{"age": 30, "email": "not-an-email"},
		{"age": 40, "email": null}
	]`)

	out, err := a.RemoveRowsWithoutValidEmail()
	require.NoError(t, err)

	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, []int{0}, out.Index())

	email, err := out.Column("email")
	require.NoError(t, err)
	s, ok := email.String(0)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", s)
}

func TestRemoveRowsWithoutValidEmail_OwnedKeepsLabels(t *testing.T) {
	a := loadAnalysis(t, `[
		{"email": "bad"},
		{"email": "keep@me.org"},
		{"email": "also.kept@mail.co"}
	]`)

	out, err := a.RemoveRowsWithoutValidEmail()
	require.NoError(t, err)

	// returned table re-indexed, owned table keeps original labels
	assert.Equal(t, []int{0, 1}, out.Index())
	assert.Equal(t, []int{1, 2}, a.Data().Index())
}

func TestRemoveRowsWithoutValidEmail_ReturnsIndependentCopy(t *testing.T) {
	a := loadAnalysis(t, `[{"age": 20, "email": "a@b.com"}]`)

	out, err := a.RemoveRowsWithoutValidEmail()
	require.NoError(t, err)

	col, err := out.Column("age")
	require.NoError(t, err)
	col.SetFloat(0, 99)

	owned, err := a.Data().Column("age")
	require.NoError(t, err)
	v, _ := owned.Float(0)
	assert.Equal(t, 20.0, v)
}

func TestRemoveRowsWithoutValidEmail_Idempotent(t *testing.T) {
	a := loadAnalysis(t, `[
		{"email": "a@b.com"},
		{"email": "nope"},
		{"email": "x.y@z.io"}
	]`)

	first, err := a.RemoveRowsWithoutValidEmail()
	require.NoError(t, err)
	second, err := a.RemoveRowsWithoutValidEmail()
	require.NoError(t, err)

	assert.Equal(t, first.NumRows(), second.NumRows())
	assert.Equal(t, first.Index(), second.Index())
}

func TestEmailPattern(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@b.com", true},
		{"john.doe@mail.co", true},
		{"first-last@sub.domain.org", true},
		{"user_1@example.de", true},
		{"a@b.co.uk", true},
		{"not-an-email", false},
		{"@b.com", false},
		{"a@.com", false},
		{"a@b", false},
		{"a b@c.com", false},
		{"a@b.information", false}, // tail segment longer than 3
		{"a..b@c.com", false},      // consecutive separators
		{"a@b.com ", false},        // anchored, trailing space rejected
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, emailPattern.MatchString(tt.email))
		})
	}
}

func TestFillMissingGrades(t *testing.T) {
	// q2 and q4 carry gaps; q1, q3, q5 are complete
	a := loadAnalysis(t, `[
		{"q1": 1, "q2": 2,    "q3": 3, "q4": null, "q5": 5},
		{"q1": 2, "q2": null, "q3": 3, "q4": 8,    "q5": 5},
		{"q1": 3, "q2": 4,    "q3": 3, "q4": 6,    "q5": 5}
	]`)

	_, touched, err := a.FillMissingGrades()
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, touched)

	q2, err := a.Data().Column("q2")
	require.NoError(t, err)
	v, ok := q2.Float(1)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, v, 1e-9) // mean of 2 and 4

	q4, err := a.Data().Column("q4")
	require.NoError(t, err)
	v, ok = q4.Float(0)
	assert.True(t, ok)
	assert.InDelta(t, 7.0, v, 1e-9) // mean of 8 and 6

	// untouched columns keep their exact values
	q1, err := a.Data().Column("q1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, q1.Floats())

	// nothing remains missing in touched columns
	assert.Equal(t, 0, q2.MissingCount())
	assert.Equal(t, 0, q4.MissingCount())
}

func TestFillMissingGrades_NoGapsNoTouch(t *testing.T) {
	a := loadAnalysis(t, `[
		{"q1": 1, "q2": 2, "q3": 3, "q4": 4, "q5": 5}
	]`)

	_, touched, err := a.FillMissingGrades()
	require.NoError(t, err)
	assert.Empty(t, touched)
}

func TestFillMissingGrades_KeepsFloatPrecision(t *testing.T) {
	a := loadAnalysis(t, `[
		{"q1": 1, "q2": 1, "q3": 1, "q4": 1, "q5": 1},
		{"q1": 2, "q2": 1, "q3": 1, "q4": 1, "q5": 1},
		{"q1": null, "q2": 1, "q3": 1, "q4": 1, "q5": 1}
	]`)

	_, touched, err := a.FillMissingGrades()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, touched)

	q1, err := a.Data().Column("q1")
	require.NoError(t, err)
	v, ok := q1.Float(2)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, v, 1e-9) // no rounding during imputation
}

func TestFillMissingGrades_MissingColumn(t *testing.T) {
	a := loadAnalysis(t, `[{"q1": 1}]`)
	_, _, err := a.FillMissingGrades()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFieldMissing))
}

func TestScoreSubjects(t *testing.T) {
	// row 0: mean(1,3,4,5) = 3.25 -> 3; row 1: two gaps -> blanked
	a := loadAnalysis(t, `[
		{"q1": 1, "q2": null, "q3": 3,    "q4": 4, "q5": 5},
		{"q1": 1, "q2": null, "q3": null, "q4": 4, "q5": 5},
		{"q1": 2, "q2": 2,    "q3": 2,    "q4": 2, "q5": 2}
	]`)

	out, err := a.ScoreSubjects(DefaultMaxMissingGrades)
	require.NoError(t, err)

	score, err := out.Column("score")
	require.NoError(t, err)

	v, ok := score.Float(0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	assert.True(t, score.IsMissing(1))

	v, ok = score.Float(2)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestScoreSubjects_ThresholdControlsBlanking(t *testing.T) {
	content := `[{"q1": 1, "q2": null, "q3": null, "q4": 4, "q5": 5}]`

	a := loadAnalysis(t, content)
	out, err := a.ScoreSubjects(1)
	require.NoError(t, err)
	score, err := out.Column("score")
	require.NoError(t, err)
	assert.True(t, score.IsMissing(0))

	// a looser threshold keeps the floored mean: (1+4+5)/3 = 3.33 -> 3
	a = loadAnalysis(t, content)
	out, err = a.ScoreSubjects(2)
	require.NoError(t, err)
	score, err = out.Column("score")
	require.NoError(t, err)
	v, ok := score.Float(0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestScoreSubjects_AllGradesMissing(t *testing.T) {
	a := loadAnalysis(t, `[{"q1": null, "q2": null, "q3": null, "q4": null, "q5": null}]`)

	out, err := a.ScoreSubjects(5)
	require.NoError(t, err)
	score, err := out.Column("score")
	require.NoError(t, err)
	assert.True(t, score.IsMissing(0))
}

func TestScoreSubjects_RangeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "floor above 255",
			content: `[{"q1": 300, "q2": 300, "q3": 300, "q4": 300, "q5": 300}]`,
		},
		{
			name:    "negative floor",
			content: `[{"q1": -5, "q2": -5, "q3": -5, "q4": -5, "q5": -5}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := loadAnalysis(t, tt.content)
			_, err := a.ScoreSubjects(DefaultMaxMissingGrades)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRange))
		})
	}
}

func TestScoreSubjects_NegativeThresholdRejected(t *testing.T) {
	a := loadAnalysis(t, `[{"q1": 1, "q2": 1, "q3": 1, "q4": 1, "q5": 1}]`)
	_, err := a.ScoreSubjects(-1)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestScoreSubjects_OverwritesExistingColumn(t *testing.T) {
	a := loadAnalysis(t, `[{"q1": 4, "q2": 4, "q3": 4, "q4": 4, "q5": 4, "score": 1}]`)

	out, err := a.ScoreSubjects(DefaultMaxMissingGrades)
	require.NoError(t, err)

	// overwritten in place, no duplicate column appended
	assert.Equal(t, 6, out.NumCols())
	score, err := out.Column("score")
	require.NoError(t, err)
	v, _ := score.Float(0)
	assert.Equal(t, 4.0, v)
}
