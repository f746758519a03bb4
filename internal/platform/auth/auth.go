// Package auth issues and verifies the HS256 development tokens used
// between the canvas CLI and the local fixture server. This is a dev
// convenience, not a production identity layer.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// RoleContextKey is the echo context key the middleware stores the verified
// role under.
const RoleContextKey = "session_role"

// Claims carries the session role alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// NewDevToken mints a signed HS256 token carrying the given role.
func NewDevToken(secret []byte, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "clinical-canvas-dev",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing dev token: %w", err)
	}
	return signed, nil
}

// ParseRole verifies a token and returns the role it carries.
func ParseRole(secret []byte, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing dev token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid dev token")
	}
	return claims.Role, nil
}

// Middleware returns an echo middleware that requires a valid bearer token
// and exposes its role on the request context. A nil or empty secret
// disables the check entirely.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(secret) == 0 {
				return next(c)
			}
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			role, err := ParseRole(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(RoleContextKey, role)
			return next(c)
		}
	}
}
