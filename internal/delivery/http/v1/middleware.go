package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDCtxKey = "request_id"
)

// HandleRequestIDMiddleware reuses the caller's request id or generates
// a new one, echoes it back and attaches a request scoped logger to the
// request context.
func (h *handlerImpl) HandleRequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	c.Set(requestIDCtxKey, requestID)
	c.Header(requestIDHeader, requestID)

	logger := h.logger.With().
		Str(requestIDCtxKey, requestID).
		Logger()
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
	c.Next()
}

func (h *handlerImpl) HandleAccessLogMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	logger := h.requestLogger(c)
	event := logger.Info()
	if c.Writer.Status() >= 500 {
		event = logger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("handled request")
}

// requestLogger returns the logger attached by the request id middleware,
// falling back to the handler logger.
func (h *handlerImpl) requestLogger(c *gin.Context) *zerolog.Logger {
	logger := zerolog.Ctx(c.Request.Context())
	if logger.GetLevel() == zerolog.Disabled {
		return &h.logger
	}
	return logger
}
