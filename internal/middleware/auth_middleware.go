package middleware

import (
	"strings"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperror.JSON(c, fiber.StatusUnauthorized, apperror.CodeNotAuthorized, "Missing authorization header")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := jwt.ValidateToken(tokenString)
		if err != nil {
			return apperror.JSON(c, fiber.StatusUnauthorized, apperror.CodeNotAuthorized, "Invalid or expired token")
		}

		c.Locals("user", claims)
		return c.Next()
	}
}

// RequireRole sadece verilen roldeki (veya admin) kullanıcıyı geçirir.
func RequireRole(role model.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		if claims.Role != string(role) && claims.Role != string(model.RoleAdmin) {
			return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "You don't have permission to perform this action")
		}

		return c.Next()
	}
}
