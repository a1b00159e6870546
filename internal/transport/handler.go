package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-tree-inspector/internal/config"
	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/internal/factory"
	"go-tree-inspector/internal/logger"
	"go-tree-inspector/internal/observer"
	"go-tree-inspector/internal/service"
	"go-tree-inspector/internal/storage"
	"go-tree-inspector/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the inspection workflow over HTTP
type Handler struct {
	svc     service.TreeInspectionService
	sources factory.SourceFactory
	metrics *observer.MetricsObserver
	cfg     *config.Config
}

func NewHandler(svc service.TreeInspectionService, sources factory.SourceFactory, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	h := &Handler{svc: svc, sources: sources, metrics: metrics, cfg: cfg}

	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)
	r.POST("/evaluate", h.evaluate)
	r.POST("/estimate", h.estimate)
	r.POST("/inspect", h.inspect)

	return r
}

func (h *Handler) evaluate(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing acceptance check")

	source, err := h.sourceFromForm(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid image", err)
		return
	}

	_, decision, err := h.svc.Capture(ctx, source)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "capture failed", err)
		return
	}

	c.JSON(http.StatusOK, models.GateResponse{
		Accepted: decision.Accepted(),
		Reason:   decision.Reason,
		Report:   decision.Report(),
		Image:    decision.Image,
	})
}

func (h *Handler) estimate(c *gin.Context) {
	logRequest(c, "Processing height estimate")

	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	est, err := h.svc.EstimateHeight(models.HeightMeasurementInput{
		Distance:     *req.Distance,
		AngleOrSlope: *req.Angle,
	})
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid measurement", err)
		return
	}

	c.JSON(http.StatusOK, est)
}

func (h *Handler) inspect(c *gin.Context) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	logRequest(c, "Processing tree inspection request")

	measurement, err := measurementFromForm(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid measurement", err)
		return
	}

	source, err := h.sourceFromForm(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "invalid image", err)
		return
	}

	resp, err := h.svc.Inspect(ctx, service.InspectRequest{
		Source:      source,
		Measurement: measurement,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.NewTimeoutError("inspection timed out", err)
		}
		respondError(c, apperrors.GetStatusCode(err), "inspection failed", err)
		return
	}

	fields := logrus.Fields{
		"session_id":         resp.SessionID,
		"stage":              resp.Stage,
		"accepted":           resp.Gate.Accepted,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}
	if resp.Result != nil && resp.Result.Identified() {
		fields["name"] = resp.Result.Identification.Name
	}
	logger.WithFields(fields).Info("Tree inspection completed")

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}

// sourceFromForm accepts, in order, an uploaded "image" file, an
// "image_url" field or a "blob" (container/blob) field.
func (h *Handler) sourceFromForm(c *gin.Context) (storage.ImageSource, error) {
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, apperrors.NewValidationError("cannot open uploaded image", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, apperrors.NewValidationError("cannot read uploaded image", err)
		}
		return h.sources.CreateSource(factory.SourceRequest{
			Type: factory.UploadSource,
			Name: file.Filename,
			Data: data,
		})
	} else if isBodyTooLarge(err) {
		return nil, &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "request body too large",
			StatusCode: http.StatusRequestEntityTooLarge,
			Cause:      err,
		}
	}

	if imageURL := strings.TrimSpace(c.PostForm("image_url")); imageURL != "" {
		return h.sources.CreateSource(factory.SourceRequest{Type: factory.URLSource, Ref: imageURL})
	}
	if blob := strings.TrimSpace(c.PostForm("blob")); blob != "" {
		return h.sources.CreateSource(factory.SourceRequest{Type: factory.AzureSource, Ref: blob})
	}

	return nil, apperrors.NewValidationError("an image file, image_url or blob is required", nil)
}

// measurementFromForm returns nil when neither field is present
func measurementFromForm(c *gin.Context) (*models.HeightMeasurementInput, error) {
	distance := strings.TrimSpace(c.PostForm("distance"))
	angle := strings.TrimSpace(c.PostForm("angle"))
	if distance == "" && angle == "" {
		return nil, nil
	}
	if distance == "" || angle == "" {
		return nil, apperrors.NewValidationError("distance and angle must be given together", nil)
	}

	d, err := strconv.ParseFloat(distance, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("distance must be a number", err)
	}
	a, err := strconv.ParseFloat(angle, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("angle must be a number", err)
	}
	return &models.HeightMeasurementInput{Distance: d, AngleOrSlope: a}, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func logRequest(c *gin.Context, msg string) {
	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info(msg)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
