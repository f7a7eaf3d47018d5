package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/biomarker-insight-server/internal/domain"
)

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// rateLimitMiddleware applies a process-wide token bucket. Zero or
// negative limits disable limiting.
func rateLimitMiddleware(limit float64, burst int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = int(limit)
		if burst < 1 {
			burst = 1
		}
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			abortWithError(c, http.StatusTooManyRequests,
				domain.NewAppError(domain.ErrRateLimit, "too many requests", ""))
			return
		}
		c.Next()
	}
}

// abortWithError writes a standardized error response and stops the
// handler chain.
func abortWithError(c *gin.Context, status int, appErr *domain.AppError) {
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok {
			appErr.RequestID = id
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": appErr})
}

// respondError maps an application error to an HTTP status.
func respondError(c *gin.Context, err error) {
	appErr, ok := domain.IsAppError(err)
	if !ok {
		appErr = domain.NewAppError(domain.ErrInternalServer, "internal server error", err.Error())
		abortWithError(c, http.StatusInternalServerError, appErr)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case domain.ErrParse, domain.ErrUnsupportedFileType:
		status = http.StatusBadRequest
	case domain.ErrIO:
		status = http.StatusUnprocessableEntity
	case domain.ErrRateLimit:
		status = http.StatusTooManyRequests
	}
	abortWithError(c, status, appErr)
}
