package middleware

import (
	"errors"
	"net/http"

	"mindease/models"
	"mindease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionKey = "session"

// LoginRedirect is where the browser goes when its session is unusable.
const LoginRedirect = "/login/"

type unauthorizedResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

// AbortUnauthorized ends the request with a 401 that sends the browser to login.
func AbortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse{Message: message, Redirect: LoginRedirect})
}

// SessionMiddleware resolves the X-Session-ID header into the session context.
func SessionMiddleware(store utils.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(utils.SessionHeader)
		if id == "" {
			AbortUnauthorized(c, "Please log in to continue.")
			return
		}
		sess, err := store.Get(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, utils.ErrNotFound) {
				utils.GetLogger().Error("session lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, utils.ErrorResponse{Message: utils.GenericFailureMessage})
				return
			}
			AbortUnauthorized(c, "Your session has expired. Please log in again.")
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session set by SessionMiddleware.
func SessionFrom(c *gin.Context) *models.SessionContext {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*models.SessionContext); ok {
			return sess
		}
	}
	return nil
}
