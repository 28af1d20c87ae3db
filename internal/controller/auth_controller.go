package controller

import (
	"log"
	"strings"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/email"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email          string         `json:"email" validate:"required,email"`
	Password       string         `json:"password" validate:"required,min=6"`
	Role           model.UserRole `json:"role" validate:"required"`
	FirstName      string         `json:"first_name" validate:"required"`
	LastName       string         `json:"last_name"`
	PhoneNumber    string         `json:"phone_number"`
	WhatsAppNumber string         `json:"whats_app_number"`
	Location       string         `json:"location"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func InitAuthController() {}

// generateUsername email'in local kısmından URL dostu bir kullanıcı adı üretir.
func generateUsername(emailAddr string) string {
	username := strings.ToLower(strings.Split(emailAddr, "@")[0])
	username = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, username)
	return username
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Role != model.RoleClient && input.Role != model.RoleCreative {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Role must be client or creative",
		})
	}

	// Email kontrolü
	var existingUser model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already exists",
		})
	}

	username := generateUsername(input.Email)
	var clash int64
	database.GetDB().Model(&model.User{}).Where("username = ?", username).Count(&clash)
	if clash > 0 {
		username = username + "-" + strings.ToLower(string(input.Role))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	user := model.User{
		Email:          input.Email,
		Password:       string(hashedPassword),
		Username:       username,
		Role:           input.Role,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		PhoneNumber:    input.PhoneNumber,
		WhatsAppNumber: input.WhatsAppNumber,
		Location:       input.Location,
		// Yeni hesaplar ödeme adımı olmadan free planla başlar
		SubscriptionPlan:   "free",
		SubscriptionStatus: string(model.SubscriptionStatusActive),
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create user",
		})
	}

	if email.GlobalEmailService != nil {
		if err := email.GlobalEmailService.SendWelcomeEmail(user.Email, user.GetFullName()); err != nil {
			log.Printf("Could not send welcome email: %v", err)
		}
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    user.GetPublicProfile(),
	})
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var user model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user.GetPublicProfile(),
	})
}

func GetMe(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "User not found")
	}

	return c.JSON(user)
}
