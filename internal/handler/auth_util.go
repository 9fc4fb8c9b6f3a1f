package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-board-api/internal/response"
)

// callerEmail pulls the authenticated caller's e-mail from the request
// context. An absent value means the route was wired without the auth
// middleware; the request is rejected rather than trusted.
func callerEmail(c *gin.Context) (string, bool) {
	email := c.GetString("user_email")
	if email == "" {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authentication required")
		return "", false
	}
	return email, true
}
