package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionkit/auth/authctx"
	"github.com/kbukum/sessionkit/auth/jwt"
	"github.com/kbukum/sessionkit/errors"
)

// TokenDecoder verifies an access token. *jwt.Codec implements it.
type TokenDecoder interface {
	Decode(token string) (jwt.Claims, error)
}

// Auth requires a valid access token, read from the cookieName cookie or,
// failing that, an "Authorization: Bearer" header. Verified claims are
// stored with authctx. Any failure is 401 UNAUTHORIZED so clients know
// to call the refresh endpoint.
func Auth(decoder TokenDecoder, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c, cookieName)
		if token == "" {
			abortUnauthorized(c, "Authentication required.")
			return
		}

		claims, err := decoder.Decode(token)
		if err != nil {
			abortUnauthorized(c, "The access token is invalid or expired.")
			return
		}

		c.Request = c.Request.WithContext(authctx.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func accessToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abortUnauthorized(c *gin.Context, reason string) {
	appErr := errors.Unauthorized(reason)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
