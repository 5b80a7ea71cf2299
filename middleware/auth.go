package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"storefront-service/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by Authenticated for downstream handlers.
const (
	ContextUserID = "userID"
	ContextRole   = "userRole"
)

// SignToken issues the bearer token saved on login.
func SignToken(secret string, userID int64, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"role": role,
	})
	return token.SignedString([]byte(secret))
}

// Authenticated validates the Authorization bearer token and stores the
// caller's identity on the request context.
func Authenticated(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "UNAUTHORIZED",
				Message: "Missing or malformed Authorization header",
			})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "UNAUTHORIZED",
				Message: "Invalid token",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "UNAUTHORIZED",
				Message: "Invalid token claims",
			})
			return
		}

		id, ok := claims["id"].(float64)
		if !ok || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "UNAUTHORIZED",
				Message: "Invalid token claims",
			})
			return
		}

		role, _ := claims["role"].(string)
		c.Set(ContextUserID, int64(id))
		c.Set(ContextRole, role)
		c.Next()
	}
}

// AdminOnly gates admin endpoints; it must run after Authenticated.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := c.GetString(ContextRole); role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "FORBIDDEN",
				Message: "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// UserID extracts the authenticated user id stored by Authenticated.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ContextUserID)
}
