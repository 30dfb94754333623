package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/ctxutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

// UserIDCookie carries the authenticated user between the web client and
// the API without requiring a token exchange.
const UserIDCookie = "mirrorbuddy-user-id"

type AuthMiddleware struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthMiddleware(log *logger.Logger, jwtSecretKey string) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, jwtSecretKey: jwtSecretKey}
}

// RequireAuth resolves the requesting user from, in order: the session
// cookie, a Bearer JWT, or an explicit userId query parameter. The resolved
// user is attached to the request context for downstream services.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := am.resolveUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		if userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing user identity", "code": "unauthorized"},
			})
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) resolveUserID(c *gin.Context) (uuid.UUID, error) {
	if cookie, err := c.Cookie(UserIDCookie); err == nil && cookie != "" {
		id, pErr := uuid.Parse(cookie)
		if pErr != nil {
			return uuid.Nil, fmt.Errorf("invalid user cookie: %w", pErr)
		}
		return id, nil
	}
	if token := extractBearerToken(c); token != "" {
		return am.userIDFromToken(token)
	}
	if q := c.Query("userId"); q != "" {
		id, pErr := uuid.Parse(q)
		if pErr != nil {
			return uuid.Nil, fmt.Errorf("invalid userId parameter: %w", pErr)
		}
		return id, nil
	}
	return uuid.Nil, nil
}

func (am *AuthMiddleware) userIDFromToken(tokenString string) (uuid.UUID, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(am.jwtSecretKey), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsedToken.Valid {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}
