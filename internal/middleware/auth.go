package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/herelius/project-tracker-api/internal/auth"
	apierrors "github.com/herelius/project-tracker-api/internal/errors"
)

const contextKeyUserID = "user_id"

// RequireAuth resolves the Authorization header into a verified user id and
// stores it in the request context. Any failure aborts with 401; the response
// never says why.
func RequireAuth(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			apierrors.Unauthorized(c)
			c.Abort()
			return
		}

		userID, err := codec.Verify(token)
		if err != nil {
			apierrors.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is present but lets the
// request continue anonymously otherwise. Used on read endpoints that public
// projects expose without authentication. A token that is present but invalid
// is still rejected.
func OptionalAuth(codec *auth.TokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, err := auth.FromHeader(header)
		if err != nil {
			apierrors.Unauthorized(c)
			c.Abort()
			return
		}

		userID, err := codec.Verify(token)
		if err != nil {
			apierrors.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context. The second return is
// false for anonymous requests.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(contextKeyUserID)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// SetUserID stores a user id in the context (used for testing)
func SetUserID(c *gin.Context, userID string) {
	c.Set(contextKeyUserID, userID)
}
