package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"naepdash/internal/dataset"
	apierrors "naepdash/internal/errors"
	"naepdash/internal/middleware"
	"naepdash/internal/services"
)

// ChartHandler handles chart and selection HTTP requests with RFC 7807
// compliant errors.
type ChartHandler struct {
	service      ChartServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(service ChartServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the chart routes.
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/meta", h.GetMeta)
	r.Get("/chart", h.GetChart)
	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.UpdateSelection)

	return r
}

// GetMeta handles GET /api/meta
func (h *ChartHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Meta(r.Context()),
	})
}

// chartQuery carries the validated chart request parameters.
type chartQuery struct {
	Subject string `validate:"required"`
	Grade   int    `validate:"required,oneof=4 8"`
}

// GetChart handles GET /api/chart?subject=&grade=
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	q := chartQuery{
		Subject: r.URL.Query().Get("subject"),
		Grade:   4,
	}
	if q.Subject == "" {
		q.Subject = string(dataset.SubjectMathematics)
	}
	if gradeStr := r.URL.Query().Get("grade"); gradeStr != "" {
		grade, err := strconv.Atoi(gradeStr)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("grade", "Grade must be a number"))
			return
		}
		q.Grade = grade
	} else {
		q.Grade = int(dataset.Grade8)
	}

	if err := h.validate.Struct(q); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("grade", "Grade must be 4 or 8"))
		return
	}

	subject, err := dataset.ParseSubject(q.Subject)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("subject", fmt.Sprintf("Unknown subject: %s", q.Subject)))
		return
	}
	grade, err := dataset.ParseGrade(q.Grade)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("grade", "Grade must be 4 or 8"))
		return
	}

	h.logger.InfoContext(r.Context(), "building chart",
		slog.String("request_id", reqID),
		slog.String("subject", string(subject)),
		slog.Int("grade", int(grade)),
	)

	chart, err := h.service.Chart(r.Context(), subject, grade)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build chart",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)

		if errors.Is(err, services.ErrContextNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusNotFound,
				"CONTEXT_NOT_FOUND",
				fmt.Sprintf("No data for %s grade %d", subject, grade),
				map[string]interface{}{
					"subject": subject,
					"grade":   grade,
				},
			))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   chart,
		"count":  len(chart.Traces),
	})
}

// GetSelection handles GET /api/selection
func (h *ChartHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Selection(r.Context()),
	})
}

// selectionRequest is the PUT /api/selection body.
type selectionRequest struct {
	Mode   string   `json:"mode" validate:"required,oneof=all_states selected_states"`
	States []string `json:"states" validate:"omitempty,dive,min=1"`
}

// UpdateSelection handles PUT /api/selection
func (h *ChartHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req selectionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("mode", "Mode must be all_states or selected_states"))
		return
	}

	h.logger.InfoContext(r.Context(), "updating selection",
		slog.String("request_id", reqID),
		slog.String("mode", req.Mode),
		slog.Int("states", len(req.States)),
	)

	snapshot, err := h.service.UpdateSelection(r.Context(), req.Mode, req.States)
	if err != nil {
		if errors.Is(err, services.ErrUnknownMode) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("mode", "Mode must be all_states or selected_states"))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snapshot,
	})
}
