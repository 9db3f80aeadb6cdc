package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ghostnote/internal/common"
	"github.com/gin-gonic/gin"
)

// fail writes the JSON error envelope for err. notFound overrides the
// generic 404 message when the route knows what was missing.
func (s *Server) fail(c *gin.Context, err error, notFound string) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": ve.Error(),
			"errors":  ve.Fields,
		})
		return
	}

	status, msg := classify(err)
	if status == http.StatusNotFound && notFound != "" {
		msg = notFound
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"success": false, "message": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Session expired"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Not Authenticated"
	case errors.Is(err, common.ErrInvalidCredential):
		return http.StatusUnauthorized, "Incorrect password"
	case errors.Is(err, common.ErrNotVerified):
		return http.StatusUnauthorized, "Please verify your account before signing in"

	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusBadRequest, "User already exists with this email"
	case errors.Is(err, common.ErrInvalidCode):
		return http.StatusBadRequest, "Incorrect verification code"
	case errors.Is(err, common.ErrCodeExpired):
		return http.StatusBadRequest, "Verification code has expired, please request a new one"

	case errors.Is(err, common.ErrRecipientNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"

	case errors.Is(err, common.ErrRecipientNotAccepting):
		return http.StatusForbidden, "User is not accepting messages"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Forbidden"

	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, "Conflict"

	case errors.Is(err, common.ErrDependency):
		msg := strings.TrimPrefix(err.Error(), common.ErrDependency.Error()+": ")
		if msg == "" || msg == err.Error() {
			msg = "A required service is unavailable"
		}
		return http.StatusInternalServerError, capitalize(msg)
	}
	return http.StatusInternalServerError, "Internal server error"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
