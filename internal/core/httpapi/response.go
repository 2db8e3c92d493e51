package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/core/api"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success   bool       `json:"success"`
	Status    int        `json:"status"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	RequestID string     `json:"request_id"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Success:   true,
		Status:    status,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, Envelope{
		Success:   false,
		Status:    status,
		Error:     &ErrorBody{Code: code, Message: message, Details: details},
		RequestID: c.GetString(requestIDKey),
	})
}

// fail reports err as classified by the service error table.
func (h *Handler) fail(c *gin.Context, err error) {
	info := api.Classify(err)
	if info.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("request failed", zapRequest(c, err)...)
	}
	respondError(c, info.HTTPStatus, string(info.Code), info.Message, nil)
}

// failHTML reports err as plain text for browser-facing routes.
func (h *Handler) failHTML(c *gin.Context, err error) {
	info := api.Classify(err)
	if info.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("request failed", zapRequest(c, err)...)
	}
	c.String(info.HTTPStatus, info.Message)
}

func zapRequest(c *gin.Context, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(requestIDKey)),
	}
}
