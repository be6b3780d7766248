package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/apperr"
)

const devModeKey = "devMode"

// DevMode marks requests as served in development mode, which lets 500
// responses carry the underlying error text.
func DevMode(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(devModeKey, enabled)
		c.Next()
	}
}

func isDevMode(c *gin.Context) bool {
	return c.GetBool(devModeKey)
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"message": message,
	})
}

// StatusFor maps an error classification to its HTTP status. Auth failures
// are 400 here; endpoints that answer 401 handle that themselves.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindAuth:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as {"message": ...}. Unclassified errors
// become 500 "Server error"; their detail is only exposed in development mode.
func RespondWithAppError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code != http.StatusInternalServerError {
		RespondWithError(c, code, apperr.MessageOf(err))
		return
	}

	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	body := gin.H{"message": "Server error"}
	if isDevMode(c) {
		body["error"] = err.Error()
	}
	c.JSON(code, body)
}
