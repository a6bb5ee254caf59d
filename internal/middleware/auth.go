package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key holding the authenticated user id (uint).
const UserIDKey = "user_id"

const tokenLeeway = 30 * time.Second

var errInvalidSubject = errors.New("token subject is not a user id")

// AuthMiddleware accepts HS256 bearer tokens whose subject is the numeric
// user id.
func AuthMiddleware(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithExpirationRequired(),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(key) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication is not configured")
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := &jwt.RegisteredClaims{}
			_, err := parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			userID, err := parseUserID(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// SignToken issues a token AuthMiddleware accepts.
func SignToken(secret string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseUserID(subject string) (uint, error) {
	n, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || n == 0 {
		return 0, errInvalidSubject
	}
	return uint(n), nil
}
