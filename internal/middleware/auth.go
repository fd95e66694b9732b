package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"audit-portal-go/internal/apikey"
)

// APIKeyHeader carries dashboard-issued API keys
const APIKeyHeader = "X-API-Key"

// KeyAuthenticator resolves an API key to a user ID
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, key string) (int, error)
}

// ParseUserToken validates an HS256 token issued by the auth provider and
// returns its user_id claim
func ParseUserToken(tokenString, secret string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	// JSON numbers decode as float64
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("token missing user_id")
	}
	return int(userID), nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// JWTAuthMiddleware requires a valid bearer token and sets "user_id"
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		userID, err := ParseUserToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// APIKeyOrJWTMiddleware accepts either an X-API-Key header or a bearer token
func APIKeyOrJWTMiddleware(keys KeyAuthenticator, secret string) gin.HandlerFunc {
	jwtAuth := JWTAuthMiddleware(secret)

	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			jwtAuth(c)
			return
		}

		userID, err := keys.Authenticate(c.Request.Context(), key)
		if errors.Is(err, apikey.ErrInvalidKey) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify API key"})
			return
		}

		c.Set("user_id", userID)
		c.Set("auth_method", "api_key")
		c.Next()
	}
}

// CallbackSecretMiddleware guards scan pipeline webhooks with a shared secret.
// An empty secret disables the check.
func CallbackSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Callback-Secret")), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
