package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"generate-video-lambda/application/ports/outbound"
)

const (
	ContextUserIDKey = "userID"
	ContextScopesKey = "scopes"
)

type CustomClaims struct {
	jwt.RegisteredClaims
	Scopes string `json:"scope,omitempty"`
}

type AuthHandler interface {
	AuthMiddleware() gin.HandlerFunc
}

type authHandler struct {
	jwks   *keyfunc.JWKS
	logger outbound.LoggerPort
}

func NewAuthHandler(jwksURL string, logger outbound.LoggerPort) (AuthHandler, error) {
	options := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Error(err, "JWKS refresh failed")
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, err
	}

	return &authHandler{jwks: jwks, logger: logger}, nil
}

func (h *authHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		var claims CustomClaims
		token, err := jwt.ParseWithClaims(tokenString, &claims, h.jwks.Keyfunc)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		scopes := strings.Split(claims.Scopes, " ")
		c.Set(ContextUserIDKey, claims.Subject)
		c.Set(ContextScopesKey, scopes)

		c.Next()
	}
}
