package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/newsproof/validation-api/internal/api/metrics"
	"github.com/newsproof/validation-api/internal/core/domain"
	"github.com/newsproof/validation-api/internal/core/ports"
)

// ValidationHandler serves text analysis for anonymous and signed-in callers.
type ValidationHandler struct {
	service ports.ValidationService
	metrics *metrics.Metrics
}

func NewValidationHandler(service ports.ValidationService, m *metrics.Metrics) *ValidationHandler {
	return &ValidationHandler{service: service, metrics: m}
}

type analyzeRequest struct {
	Text   string `json:"text"`
	Source string `json:"source" validate:"max=2048"`
}

// Analyze handles POST /api/validation/analyze.
//
// @Summary      Analyze a piece of text
// @Tags         validation
// @Accept       json
// @Produce      json
// @Param        body  body      analyzeRequest   true  "Text and optional source"
// @Success      200   {object}  domain.Analysis
// @Failure      400   {object}  map[string][]map[string]string
// @Failure      502   {object}  map[string][]map[string]string
// @Router       /api/validation/analyze [post]
func (h *ValidationHandler) Analyze(c echo.Context) error {
	start := time.Now()

	var req analyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		h.observe("invalid_input", start)
		return err
	}

	in := ports.AnalyzeInput{Text: req.Text, Source: req.Source}
	if user := currentUser(c); user != nil {
		id := user.ID
		in.UserID = &id
	}

	analysis, err := h.service.Analyze(c.Request().Context(), in)
	if err != nil {
		h.observe(analyzeResult(err), start)
		return err
	}

	h.observe(toneLabel(analysis.Classification.Tone), start)
	return c.JSON(http.StatusOK, analysis)
}

func (h *ValidationHandler) observe(result string, start time.Time) {
	h.metrics.Analyses.WithLabelValues(result).Inc()
	h.metrics.AnalysisDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

func analyzeResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrGateway):
		return "gateway_error"
	default:
		return "error"
	}
}

// toneLabel bounds the metric label to the known tones.
func toneLabel(t domain.Tone) string {
	switch t {
	case domain.ToneGood, domain.ToneBad, domain.ToneNeutral:
		return string(t)
	default:
		return "other"
	}
}
