package middleware

import (
	"strings"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/model"

	"github.com/labstack/echo/v4"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

type TokenParser interface {
	ParseToken(token string) (model.Requester, error)
}

// AuthMiddleware resolves the bearer token to the caller and stores it on the
// echo context.
func AuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return apperror.Unauthorized("authorization header missing")
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || strings.TrimSpace(token) == "" {
				return apperror.Unauthorized("bearer token malformed")
			}

			requester, err := parser.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return err
			}

			c.Set(userIDKey, requester.UserID)
			c.Set(roleKey, requester.Role)
			return next(c)
		}
	}
}

func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !RequesterFrom(c).IsAdmin() {
				return apperror.Forbidden("admin access required")
			}
			return next(c)
		}
	}
}

func RequesterFrom(c echo.Context) model.Requester {
	userID, _ := c.Get(userIDKey).(string)
	role, _ := c.Get(roleKey).(model.Role)
	return model.Requester{UserID: userID, Role: role}
}
