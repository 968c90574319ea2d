package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/helmcode/pestscan/pkg/analyzer"
	"github.com/helmcode/pestscan/pkg/llm"
	"github.com/helmcode/pestscan/pkg/metrics"
	"github.com/helmcode/pestscan/pkg/parser"
	"github.com/helmcode/pestscan/pkg/schema"
	"github.com/helmcode/pestscan/pkg/version"
)

const ServiceName = "pestscan-bridge"

// Error messages returned to callers.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidImage     = "Invalid imageDataUrl"
	msgBodyTooLarge     = "Request body too large"
	msgMisconfigured    = "Server misconfigured"
	msgNoOutput         = "No structured output returned"
	msgInvalidOutput    = "Structured output did not match the report schema"
	msgProviderFailed   = "Provider request failed"
)

// ProviderFactory resolves the provider for one request.
type ProviderFactory interface {
	Create() (llm.LLM, error)
}

// AnalyzeRequest is the bridge request body. The field is decoded loosely so
// that a non-string value is reported as invalid input rather than as a
// decoding failure.
type AnalyzeRequest struct {
	ImageDataURL any `json:"imageDataUrl"`
}

type Handlers struct {
	providers    ProviderFactory
	validator    *schema.Validator
	language     string
	maxBodyBytes int64
}

func NewHandlers(providers ProviderFactory, validator *schema.Validator, language string, maxBodyBytes int64) *Handlers {
	return &Handlers{
		providers:    providers,
		validator:    validator,
		language:     language,
		maxBodyBytes: maxBodyBytes,
	}
}

// Analyze accepts one image data URL and answers with a pest report.
func (h *Handlers) Analyze(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		h.fail(c, http.StatusMethodNotAllowed, "method_not_allowed", msgMethodNotAllowed)
		return
	}

	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, "bad_request", msgBodyTooLarge)
			return
		}
		h.fail(c, http.StatusBadRequest, "bad_request", msgInvalidImage)
		return
	}

	imageDataURL, err := parseImageDataURL(body)
	if err != nil {
		log.WithError(err).Debug("report.analyze.invalid_input")
		h.fail(c, http.StatusBadRequest, "bad_request", msgInvalidImage)
		return
	}
	metrics.ImageBytes.Observe(float64(len(imageDataURL)))

	provider, err := h.providers.Create()
	if err != nil {
		log.WithError(err).Error("report.analyze.misconfigured")
		h.fail(c, http.StatusInternalServerError, "misconfigured", msgMisconfigured)
		return
	}

	logger := log.WithFields(log.Fields{
		"provider":       provider.Name(),
		"model":          provider.GetModel(),
		"data_url_bytes": len(imageDataURL),
	})
	logger.Info("report.analyze.request")

	metrics.InFlight.Inc()
	start := time.Now()
	report, err := analyzer.NewWithLLM(provider, h.validator).
		WithLanguage(h.language).
		Analyze(c.Request.Context(), imageDataURL)
	elapsed := time.Since(start)
	metrics.InFlight.Dec()

	if err != nil {
		status, outcome, msg := classify(err)
		metrics.ProviderDurationSeconds.WithLabelValues(provider.Name(), outcome).Observe(elapsed.Seconds())
		logger.WithError(err).WithField("duration_ms", elapsed.Milliseconds()).Error("report.analyze.failed")
		h.fail(c, status, outcome, msg)
		return
	}

	metrics.ProviderDurationSeconds.WithLabelValues(provider.Name(), "ok").Observe(elapsed.Seconds())
	metrics.RequestsTotal.WithLabelValues("ok").Inc()
	logger.WithFields(log.Fields{
		"pest":        report.Pest.Name,
		"confidence":  report.Pest.Confidence,
		"duration_ms": elapsed.Milliseconds(),
	}).Info("report.analyze.success")

	c.JSON(http.StatusOK, report)
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// Version reports build information.
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get(ServiceName))
}

func (h *Handlers) fail(c *gin.Context, status int, outcome, msg string) {
	metrics.RequestsTotal.WithLabelValues(outcome).Inc()
	c.JSON(status, gin.H{"error": msg})
}

// classify maps an analysis error to the response status, metrics outcome,
// and caller-facing message.
func classify(err error) (int, string, string) {
	var apiErr *llm.APIError
	switch {
	case errors.As(err, &apiErr):
		return http.StatusInternalServerError, "provider_error", apiErr.Message
	case errors.Is(err, llm.ErrNoStructuredOutput):
		return http.StatusInternalServerError, "no_output", msgNoOutput
	case errors.Is(err, parser.ErrInvalidReport):
		return http.StatusInternalServerError, "invalid_output", msgInvalidOutput
	default:
		return http.StatusInternalServerError, "provider_error", msgProviderFailed
	}
}

// parseImageDataURL returns the imageDataUrl field of body when it is a
// well-formed data URL declaring an image media type.
func parseImageDataURL(body []byte) (string, error) {
	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", err
	}
	s, ok := req.ImageDataURL.(string)
	if !ok {
		return "", errors.New("imageDataUrl must be a string")
	}
	if !strings.HasPrefix(s, "data:image/") {
		return "", errors.New("imageDataUrl must be an image data URL")
	}
	if _, _, err := llm.DecodeImageDataURL(s); err != nil {
		return "", err
	}
	return s, nil
}
