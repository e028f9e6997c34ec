package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"expertcof/internal/shared/auth"
	"expertcof/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	accessTokenKey = "accessToken"
)

// Auth validates access tokens and stores identity in context. Paths with any
// of the public prefixes pass through without identity.
func Auth(verifier *auth.Verifier, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token, ok := bearerToken(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Usuário não autenticado.", nil)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			msg := "missing or invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "session expired"
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", msg, nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(accessTokenKey, token)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.UserMetadata.Name != "" {
			c.Set(userNameKey, claims.UserMetadata.Name)
		}
		c.Request = c.Request.WithContext(auth.WithAccessToken(c.Request.Context(), token))
		c.Next()
	}
}

// bearerToken reads the Authorization header. Websocket upgrades cannot set
// headers from browsers, so /ws paths may pass access_token as a query param.
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		return token, token != ""
	}
	if strings.HasSuffix(c.Request.URL.Path, "/ws") {
		token := strings.TrimSpace(c.Query("access_token"))
		return token, token != ""
	}
	return "", false
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the display name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// AccessTokenFromContext fetches the raw bearer token accepted by the auth middleware.
func AccessTokenFromContext(c *gin.Context) string {
	return stringFromContext(c, accessTokenKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
