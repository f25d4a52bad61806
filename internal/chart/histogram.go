// Package chart renders analysis results as xlsx charts. It is the
// charting collaborator of the survey package: the analysis only
// requires that a render happens, never inspects the output.
package chart

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "surveycli/internal/errors"
)

const sheetName = "Histogram"

// ExcelRenderer draws histograms into an xlsx workbook with an
// embedded column chart.
type ExcelRenderer struct {
	outPath string
	logger  *slog.Logger
}

// NewExcelRenderer creates a renderer that writes the workbook to
// outPath on every render, replacing any previous file.
func NewExcelRenderer(outPath string, logger *slog.Logger) *ExcelRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelRenderer{outPath: outPath, logger: logger}
}

// RenderHistogram writes the bin table and a column chart for it.
func (r *ExcelRenderer) RenderHistogram(title string, counts []int, edges []float64) error {
	if len(edges) != len(counts)+1 {
		return apperrors.NewValidationError(
			fmt.Sprintf("histogram shape mismatch: %d counts, %d edges", len(counts), len(edges)))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A1", "Bin"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellValue(sheetName, "B1", "Count"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, c := range counts {
		row := i + 2
		label := fmt.Sprintf("%g-%g", edges[i], edges[i+1])
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), label); err != nil {
			return fmt.Errorf("write bin %d: %w", i, err)
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), c); err != nil {
			return fmt.Errorf("write count %d: %w", i, err)
		}
	}

	lastRow := len(counts) + 1
	err := f.AddChart(sheetName, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheetName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetName, lastRow),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheetName, lastRow),
		}},
		Title: []excelize.RichTextRun{{Text: title}},
	})
	if err != nil {
		return fmt.Errorf("add chart: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := f.SaveAs(r.outPath); err != nil {
		return fmt.Errorf("save chart workbook: %w", err)
	}

	r.logger.Info("histogram chart written",
		slog.String("path", r.outPath),
		slog.Int("bins", len(counts)))
	return nil
}
