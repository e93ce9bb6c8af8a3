package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/services"
)

const actorKey = "actor"

// RequireAuth verifies the Bearer token and stashes the caller's identity on
// the context for downstream handlers.
func RequireAuth(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWith(c, apierr.Unauthorized("missing bearer token"))
			return
		}
		claims, err := authService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.Set(actorKey, *claims)
		c.Next()
	}
}

// RequireRole gates a route behind a minimum role. It must run after
// RequireAuth.
func RequireRole(minRole int) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.UserID == 0 || actor.RoleID < minRole {
			abortWith(c, apierr.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// ActorFrom returns the verified caller, or the zero value on an
// unauthenticated route.
func ActorFrom(c *gin.Context) services.TokenClaims {
	value, ok := c.Get(actorKey)
	if !ok {
		return services.TokenClaims{}
	}
	claims, ok := value.(services.TokenClaims)
	if !ok {
		return services.TokenClaims{}
	}
	return claims
}

func abortWith(c *gin.Context, err error) {
	apiErr := apierr.AsError(err)
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Error(),
	}})
}
