package cron

import (
	"log"
	"time"

	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/email"
	"lenslink_backend/pkg/subscription"

	"github.com/robfig/cron/v3"
)

func InitSubscriptionExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		warnExpiringSubscriptions()
		expireEndedSubscriptions()
	})

	if err != nil {
		log.Printf("Could not initialize subscription expiry cron: %v", err)
		return
	}

	c.Start()
}

func warnExpiringSubscriptions() {
	log.Println("Checking for expiring subscriptions...")

	warningDays := []int{7, 3}

	for _, days := range warningDays {
		var subs []model.Subscription
		dayStart := time.Now().AddDate(0, 0, days).Truncate(24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)

		err := database.DB.Where("status = ? AND end_date >= ? AND end_date < ?",
			model.SubscriptionStatusActive, dayStart, dayEnd).
			Preload("User").
			Find(&subs).Error

		if err != nil {
			log.Printf("Error fetching expiring subscriptions: %v", err)
			continue
		}

		log.Printf("Found %d subscriptions expiring in %d days", len(subs), days)

		for _, sub := range subs {
			if email.GlobalEmailService == nil || sub.EndDate == nil {
				continue
			}

			err := email.GlobalEmailService.SendSubscriptionExpiryWarning(
				sub.User.Email,
				sub.User.GetFullName(),
				string(sub.Plan),
				*sub.EndDate,
				days,
			)
			if err != nil {
				log.Printf("Error sending expiry warning to %s: %v", sub.User.Email, err)
			}
		}
	}
}

// expireEndedSubscriptions bitiş tarihi geçen aktif abonelikleri expired yapar
// ve kullanıcıyı free tablosuna düşürür.
func expireEndedSubscriptions() {
	var subs []model.Subscription
	err := database.DB.Where("status = ? AND end_date IS NOT NULL AND end_date < ?",
		model.SubscriptionStatusActive, time.Now()).
		Find(&subs).Error
	if err != nil {
		log.Printf("Error fetching ended subscriptions: %v", err)
		return
	}

	for _, sub := range subs {
		if err := database.DB.Model(&sub).Update("status", model.SubscriptionStatusExpired).Error; err != nil {
			log.Printf("Error expiring subscription %d: %v", sub.ID, err)
			continue
		}

		if err := database.DB.Model(&model.User{}).Where("id = ?", sub.UserID).
			Updates(map[string]interface{}{
				"subscription_plan":   string(subscription.FreePlan),
				"subscription_status": string(model.SubscriptionStatusExpired),
			}).Error; err != nil {
			log.Printf("Error downgrading user %d: %v", sub.UserID, err)
		}
	}

	if len(subs) > 0 {
		log.Printf("Expired %d subscriptions", len(subs))
	}
}
