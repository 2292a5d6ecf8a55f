package middleware

import (
	"net/http"

	"mindease/models"
	"mindease/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole admits only sessions acting in one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			AbortUnauthorized(c, "Please log in to continue.")
			return
		}
		if !allowed[sess.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
				Message: "You are not allowed to do this in your current role.",
				Code:    "forbiddenRole",
			})
			return
		}
		c.Next()
	}
}
