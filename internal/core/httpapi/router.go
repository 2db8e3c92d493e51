// Package httpapi exposes the form service over HTTP using gin.
//
// Public routes serve rendered forms and accept submissions; admin routes
// under /api/admin manage definitions and stored submissions. JSON
// responses share one envelope: {success, status, data, error, request_id}.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/types"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// Handler serves the HTTP API.
type Handler struct {
	svc     *api.Service
	log     *zap.Logger
	maxBody int64
}

// NewHandler creates a handler. maxBody caps request bodies; zero or a
// value above the submission limit uses the submission limit.
func NewHandler(svc *api.Service, log *zap.Logger, maxBody int64) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("svc cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log cannot be nil")
	}
	if maxBody <= 0 || maxBody > types.MaxSubmissionSize {
		maxBody = types.MaxSubmissionSize
	}
	return &Handler{svc: svc, log: log, maxBody: maxBody}, nil
}

// Router builds the gin engine with all routes and middleware.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(h.log), gin.CustomRecovery(h.recovered))

	r.GET("/healthz", h.health)

	forms := r.Group("/api/forms/:slug")
	forms.GET("", h.formHTML)
	forms.GET("/json", h.formJSON)
	forms.POST("", h.submitJSON)
	forms.POST("/submit", h.submitHTML)
	forms.GET("/success", h.successHTML)
	forms.POST("/steps/:step/validate", h.validateStep)
	forms.POST("/visibility", h.visibility)

	admin := r.Group("/api/admin")
	admin.GET("/forms", h.listForms)
	admin.POST("/forms", h.createForm)
	admin.GET("/forms/:id", h.getForm)
	admin.PUT("/forms/:id", h.updateForm)
	admin.DELETE("/forms/:id", h.deleteForm)
	admin.POST("/forms/:id/restore", h.restoreForm)
	admin.GET("/forms/:id/export", h.exportForm)
	admin.GET("/forms/:id/submissions", h.listSubmissions)
	admin.GET("/submissions/:id", h.getSubmission)
	admin.DELETE("/submissions/:id", h.deleteSubmission)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	return r
}

func (h *Handler) health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, string(api.CodeDatabase), "database unavailable", nil)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) recovered(c *gin.Context, rec any) {
	h.log.Error("handler panic",
		zap.Any("panic", rec),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(requestIDKey)))
	respondError(c, http.StatusInternalServerError, string(api.CodeDatabase), "internal error", nil)
	c.Abort()
}

// requestID propagates a caller-supplied X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Info("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
