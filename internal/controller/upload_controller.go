package controller

import (
	"log"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/utils/jwt"
	"lenslink_backend/pkg/utils/storage"

	"github.com/gofiber/fiber/v2"
)

const MaxPortfolioImages = 12

// UploadPortfolioImage creative profiline portfolyo resmi yükler.
func UploadPortfolioImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var profile model.CreativeProfile
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeProfileRequired, "Create your creative profile first")
	}

	if len(profile.PortfolioImages) >= MaxPortfolioImages {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Maximum portfolio image limit reached",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	url, err := storage.UploadPortfolioImage(file, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	profile.PortfolioImages = append(profile.PortfolioImages, url)
	if err := database.GetDB().Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save image record",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"url":     url,
	})
}

// DeletePortfolioImage portfolyo resmini hem S3'ten hem profilden kaldırır.
func DeletePortfolioImage(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := struct {
		URL string `json:"url"`
	}{}
	if err := c.BodyParser(&input); err != nil || input.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image URL is required",
		})
	}

	var profile model.CreativeProfile
	if err := database.GetDB().Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Profile not found")
	}

	found := false
	images := profile.PortfolioImages[:0]
	for _, url := range profile.PortfolioImages {
		if url == input.URL {
			found = true
			continue
		}
		images = append(images, url)
	}
	if !found {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Image not found")
	}

	if err := storage.DeleteImage(input.URL); err != nil {
		log.Printf("Could not delete image from storage: %v", err)
	}

	profile.PortfolioImages = images
	if err := database.GetDB().Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update profile",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
