package middleware

import (
	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// CheckRequestOwnership talep sahibini (veya admini) geçirir, talebi locals'a koyar.
func CheckRequestOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		requestID := c.Params("id")

		var request model.ServiceRequest
		if err := database.DB.First(&request, requestID).Error; err != nil {
			return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Request not found")
		}

		if request.ClientID != claims.UserID && claims.Role != string(model.RoleAdmin) {
			return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "You don't have permission to access this request")
		}

		c.Locals("request", &request)
		return c.Next()
	}
}
