package seed

import (
	"log"
	"os"

	"lenslink_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin ADMIN_EMAIL/ADMIN_PASSWORD env değişkenlerinden admin hesabı açar.
func SeedAdmin(db *gorm.DB) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var existing model.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := model.User{
		Email:              adminEmail,
		Password:           string(hashed),
		Username:           "admin",
		Role:               model.RoleAdmin,
		FirstName:          "LensLink",
		LastName:           "Admin",
		IsVerified:         true,
		SubscriptionPlan:   "pro",
		SubscriptionStatus: string(model.SubscriptionStatusActive),
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Error creating admin user: %v", err)
		return
	}

	log.Println("Admin user seeded successfully!")
}
