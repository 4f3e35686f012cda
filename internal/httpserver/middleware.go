package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/domain"
)

const userCtxKey = "storefront.user"

// identityMiddleware requires a valid bearer token and stores the caller.
func identityMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{Message: err.Error()})
			return
		}
		user, err := auth.Parse(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{Message: "invalid token"})
			return
		}
		c.Set(userCtxKey, user)
		c.Next()
	}
}

// requireRole lets the request through when the caller has any of roles.
func requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		for _, r := range roles {
			if user.HasRole(r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apiResponse{Message: "forbidden"})
	}
}

func currentUser(c *gin.Context) domain.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return domain.User{}
	}
	user, _ := v.(domain.User)
	return user
}
