package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"catalogsync/internal/logger"

	"github.com/gin-gonic/gin"
)

func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// A client that went away cannot receive a response.
		if err, ok := recovered.(error); ok && brokenConnection(err) {
			c.Abort()
			return
		}

		if gin.IsDebugging() {
			logger.Error("panic serving %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
		} else {
			logger.Error("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

func brokenConnection(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
