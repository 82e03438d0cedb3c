package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/clinicq/auth"
	apperrors "github.com/kbukum/clinicq/errors"
)

const tenantKey = "tenant"

// TokenParser verifies a signed cookie value and returns the tenant.
type TokenParser interface {
	Parse(token string) (string, error)
}

// Tenant resolves the tenant from cookieName and rejects the request with
// 401 when it is missing. With a non-nil parser the cookie must hold a valid
// signed token.
func Tenant(cookieName string, parser TokenParser) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = auth.DefaultCookieName
	}
	return func(c *gin.Context) {
		value, err := c.Cookie(cookieName)
		if err != nil || value == "" {
			abort(c, apperrors.Unauthorized(""))
			return
		}

		tenant := value
		if parser != nil {
			tenant, err = parser.Parse(value)
			if err != nil {
				abort(c, apperrors.InvalidToken().WithCause(err))
				return
			}
		}
		c.Set(tenantKey, tenant)
		c.Next()
	}
}

// TenantFrom returns the tenant resolved by Tenant, or "".
func TenantFrom(c *gin.Context) string {
	return c.GetString(tenantKey)
}

func abort(c *gin.Context, err *apperrors.AppError) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
