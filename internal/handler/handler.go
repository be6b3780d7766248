package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/middleware"
)

// bindJSON decodes the request body into req. An empty body leaves req at its
// zero value so that the services report which fields are missing.
func bindJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// identity returns the authenticated user id, answering 401 when the auth
// middleware did not run.
func identity(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "No token provided")
		return "", false
	}
	return userID, true
}
