// Command survey-report runs the full questionnaire analysis once and
// prints the report as JSON. The age histogram is also rendered to an
// xlsx chart.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"surveycli/internal/chart"
	"surveycli/internal/config"
	"surveycli/internal/survey"
)

func main() {
	dataFile := flag.String("data", "", "path to questionnaire JSON (defaults to data/survey.json next to the executable)")
	chartFile := flag.String("chart", "", "output path for the age histogram chart (defaults to reports/age_distribution.xlsx)")
	maxMissing := flag.Int("max-missing", survey.DefaultMaxMissingGrades, "missing grades tolerated per respondent before the score is blanked")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *dataFile == "" {
		*dataFile = filepath.Join(paths.DataDir, "survey.json")
	}
	if *chartFile == "" {
		*chartFile = filepath.Join(paths.ReportsDir, "age_distribution.xlsx")
	}

	slog.Info("Running questionnaire analysis",
		"data", *dataFile,
		"chart", *chartFile,
		"max_missing", *maxMissing)

	renderer := chart.NewExcelRenderer(*chartFile, logger)
	report, err := survey.Run(context.Background(), *dataFile, *maxMissing,
		survey.WithLogger(logger),
		survey.WithRenderer(renderer))
	if err != nil {
		slog.Error("Analysis failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		slog.Error("Failed to encode report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
