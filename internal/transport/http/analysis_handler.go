// Package http exposes the questionnaire analysis over a chi router.
// The analysis endpoint is stateless: every request loads a fresh
// dataset, runs the full cleaning pass, and returns the report.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "surveycli/internal/errors"
	"surveycli/internal/survey"
)

// AnalysisService runs one full analysis pass over a dataset file.
type AnalysisService interface {
	Analyze(ctx context.Context, dataFile string, maxMissing int) (*survey.Report, error)
}

// AnalysisRequest is the body of POST /analysis. DataFile may be
// omitted to analyze the server's configured dataset.
type AnalysisRequest struct {
	DataFile   string `json:"data_file" validate:"omitempty,filepath"`
	MaxMissing *int   `json:"max_missing" validate:"omitempty,gte=0"`
}

// AnalysisResponse wraps the report for the wire
type AnalysisResponse struct {
	Success bool           `json:"success"`
	Report  *survey.Report `json:"report"`
}

// Render implements the render.Renderer interface
func (a *AnalysisResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusOK)
	return nil
}

// AnalysisHandler handles analysis HTTP requests
type AnalysisHandler struct {
	service           AnalysisService
	defaultDataFile   string
	defaultMaxMissing int
	logger            *slog.Logger
	validate          *validator.Validate
}

// NewAnalysisHandler creates a new analysis handler with the service
// and the configured defaults.
func NewAnalysisHandler(service AnalysisService, defaultDataFile string, defaultMaxMissing int, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:           service,
		defaultDataFile:   defaultDataFile,
		defaultMaxMissing: defaultMaxMissing,
		logger:            logger.With(slog.String("component", "analysis_handler")),
		validate:          validator.New(),
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/analysis", h.RunAnalysis)
	return r
}

// RunAnalysis executes the full analysis and renders the report.
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.renderError(w, r, apperrors.ErrInvalidRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.renderError(w, r, apperrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		return
	}

	dataFile := req.DataFile
	if dataFile == "" {
		dataFile = h.defaultDataFile
	}
	maxMissing := h.defaultMaxMissing
	if req.MaxMissing != nil {
		maxMissing = *req.MaxMissing
	}

	h.logger.InfoContext(ctx, "analysis requested",
		slog.String("data_file", dataFile),
		slog.Int("max_missing", maxMissing))

	report, err := h.service.Analyze(ctx, dataFile, maxMissing)
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis failed", slog.String("error", err.Error()))
		h.renderError(w, r, apperrors.FromError(err))
		return
	}

	if err := render.Render(w, r, &AnalysisResponse{Success: true, Report: report}); err != nil {
		h.logger.ErrorContext(ctx, "failed to render response", slog.String("error", err.Error()))
	}
}

func (h *AnalysisHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apperrors.APIError) {
	if err := render.Render(w, r, apiErr); err != nil {
		h.logger.Error("failed to render error response", slog.String("error", err.Error()))
	}
}
