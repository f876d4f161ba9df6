/*
Package auth provides the request policy hook for the API routes. By default
it allows every request; configuring SESSION_SECRET upgrades it to bearer-JWT
validation without touching any handler logic.
*/
package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"EarlyPulse_V0.1/internal/utility"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// PolicyMiddleware gates API requests. With no SESSION_SECRET set it is a
// pass-through; with one set it requires a valid HMAC-signed bearer token and
// stores the token subject in the context as user_id.
func PolicyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret := os.Getenv("SESSION_SECRET")
		if secret == "" {
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return utility.Fail(c, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utility.Fail(c, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set("user_id", sub)
		}
		return next(c)
	}
}
