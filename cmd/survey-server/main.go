// Command survey-server serves the questionnaire analysis over HTTP.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"surveycli/internal/app"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	application, err := app.New(*configFile)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
