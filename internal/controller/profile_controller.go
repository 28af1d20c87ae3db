package controller

import (
	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

type ProfileInput struct {
	DisplayName string   `json:"display_name" validate:"required"`
	Bio         string   `json:"bio"`
	Specialties []string `json:"specialties"`
	ServiceArea string   `json:"service_area"`
	YearsActive int      `json:"years_active"`
}

// UpsertMyProfile creative profilini oluşturur veya günceller. Teklif
// gönderebilmenin ön koşulu bu kaydın var olmasıdır.
func UpsertMyProfile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ProfileInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Display name is required",
		})
	}

	var profile model.CreativeProfile
	err := database.DB.Where("user_id = ?", claims.UserID).First(&profile).Error

	profile.UserID = claims.UserID
	profile.DisplayName = input.DisplayName
	profile.Bio = input.Bio
	profile.Specialties = input.Specialties
	profile.ServiceArea = input.ServiceArea
	profile.YearsActive = input.YearsActive

	if err != nil {
		if err := database.DB.Create(&profile).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create profile",
			})
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	}

	if err := database.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update profile",
		})
	}

	return c.JSON(profile)
}

func GetMyProfile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var profile model.CreativeProfile
	if err := database.DB.Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Profile not found")
	}

	return c.JSON(profile)
}

// GetCreativeProfile herkese açık profil görünümü.
func GetCreativeProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	var user model.User
	if err := database.DB.Where("username = ? AND role = ?", username, model.RoleCreative).
		First(&user).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Creative not found")
	}

	var profile model.CreativeProfile
	if err := database.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Profile not found")
	}

	return c.JSON(fiber.Map{
		"user":    user.GetPublicProfile(),
		"profile": profile,
	})
}
