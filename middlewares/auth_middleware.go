package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/utils"
)

const identityKey = "identity"

// TokenParser validates a bearer token.
type TokenParser interface {
	ParseToken(token string) (domain.Identity, error)
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.RespondError(c, domain.AuthenticationError("Access token required"))
			return
		}

		identity, err := tokens.ParseToken(token)
		if err != nil {
			utils.RespondError(c, domain.AuthenticationError("Invalid or expired token"))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present and
// lets every request through.
func OptionalAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if identity, err := tokens.ParseToken(token); err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// QueryTokenAuth reads the token from the "token" query parameter, which is the
// only place browsers can put it on a websocket handshake. A missing token is
// anonymous; a bad one is rejected.
func QueryTokenAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			c.Next()
			return
		}

		identity, err := tokens.ParseToken(token)
		if err != nil {
			utils.RespondError(c, domain.AuthenticationError("Invalid or expired token"))
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// Authorize lets through authenticated callers holding one of roles. It must run
// after Authenticate.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			utils.RespondError(c, domain.AuthenticationError("Access token required"))
			return
		}

		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, domain.AuthorizationError("Insufficient permissions"))
	}
}

// IdentityFrom returns the identity stored by the auth middlewares.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
