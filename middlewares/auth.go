package middlewares

import (
	"context"
	"strings"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
)

// UserResolver maps the token subject to a local user.
type UserResolver interface {
	ResolveUser(ctx context.Context, externalID string) (*entity.User, error)
}

// Authenticator verifies bearer tokens and loads the caller.
type Authenticator struct {
	secret string
	users  UserResolver
}

func NewAuthenticator(secret string, users UserResolver) *Authenticator {
	return &Authenticator{secret: secret, users: users}
}

// AuthMiddleware checks the Authorization header and, when roles are
// given, that the caller has one of them.
func (a *Authenticator) AuthMiddleware(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			resp.Unauthorized(c, "missing or invalid token")
			return
		}
		if !a.authenticate(c, strings.TrimPrefix(h, "Bearer "), requiredRoles) {
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context, tokenStr string, requiredRoles []string) bool {
	claims, err := utils.ParseToken(tokenStr, a.secret)
	if err != nil {
		resp.Unauthorized(c, "invalid token")
		return false
	}

	user, err := a.users.ResolveUser(c.Request.Context(), claims.Subject)
	if err != nil {
		resp.Unauthorized(c, "unknown user")
		return false
	}

	c.Set(utils.CtxUserID, user.ID)
	c.Set(utils.CtxRole, user.Role)
	c.Set(utils.CtxExternalID, claims.Subject)

	if len(requiredRoles) > 0 {
		allowed := false
		for _, r := range requiredRoles {
			if user.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			resp.Forbidden(c, "forbidden")
			return false
		}
	}
	return true
}
