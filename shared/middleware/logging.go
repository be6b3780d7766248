package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware logs one line per request once the handler chain is done.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Printf("%s %s status=%d latency_ms=%d client_ip=%s",
			method, path, c.Writer.Status(), time.Since(start).Milliseconds(), c.ClientIP())
	}
}

// Recovery turns a panic into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		body := gin.H{"message": "Something went wrong!"}
		if isDevMode(c) {
			body["error"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	RespondWithError(c, http.StatusNotFound, "Route not found")
}
