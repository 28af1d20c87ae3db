package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/email"
	"lenslink_backend/pkg/paystack"
	"lenslink_backend/pkg/subscription"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HandlePaymentWebhook ödeme sağlayıcının charge olaylarını işler. İmza ham
// gövde üzerinden doğrulanır ve uymazsa hiçbir state'e dokunulmaz. Teslimat
// en-az-bir-kez olduğundan aktivasyon idempotenttir: payment.status zaten
// success ise ikinci teslimat no-op'tur.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	webhookSecret := os.Getenv("PAYSTACK_SECRET_KEY")

	payload := c.Body()
	signature := c.Get("x-paystack-signature")

	if !paystack.VerifyWebhookSignature(payload, signature, webhookSecret) {
		log.Printf("Webhook rejected: invalid signature")
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidSignature, "Invalid webhook signature")
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event body",
		})
	}

	log.Printf("Processing payment webhook event: %s (ref %s)", event.Event, event.Data.Reference)

	switch event.Event {
	case "charge.success":
		return handleChargeSuccess(c, &event)
	case "charge.failed":
		return handleChargeFailed(c, &event)
	default:
		// Tanınmayan olaylar onaylanır ki sağlayıcı tekrar denemesin
		return c.SendStatus(fiber.StatusOK)
	}
}

func handleChargeSuccess(c *fiber.Ctx, event *paystack.WebhookEvent) error {
	var sub model.Subscription
	if err := database.DB.Preload("User").
		Where("payment_reference = ?", event.Data.Reference).
		First(&sub).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Unknown payment reference")
	}

	// Idempotency guard: tekrar teslim edilen olay ikinci kez aktive etmez
	if sub.Payment.Status == model.PaymentStatusSuccess {
		return c.JSON(fiber.Map{
			"message": "Already processed",
		})
	}

	now := time.Now()
	endDate := subscription.PeriodEnd(sub.StartDate, sub.Period)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Yeni aktif abonelik eskisinin yerine geçer (upgrade dahil)
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ? AND id != ?", sub.UserID, model.SubscriptionStatusActive, sub.ID).
			Updates(map[string]interface{}{
				"status":     model.SubscriptionStatusCancelled,
				"auto_renew": false,
			}).Error; err != nil {
			return err
		}

		sub.Payment.Status = model.PaymentStatusSuccess
		sub.Payment.TransactionID = fmt.Sprintf("%d", event.Data.ID)
		sub.Payment.PaidAt = &now
		sub.Status = model.SubscriptionStatusActive
		sub.EndDate = &endDate
		sub.RefreshFeatures()
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", sub.UserID).
			Updates(map[string]interface{}{
				"subscription_plan":   string(sub.Plan),
				"subscription_status": string(model.SubscriptionStatusActive),
				"subscription_expiry": endDate,
			}).Error
	})

	if err != nil {
		log.Printf("Could not activate subscription %s: %v", event.Data.Reference, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not activate subscription",
		})
	}

	if email.GlobalEmailService != nil {
		if err := email.GlobalEmailService.SendSubscriptionActivatedEmail(
			sub.User.Email, sub.User.GetFullName(), string(sub.Plan), string(sub.Period),
			sub.Features.ProposalsPerMonth, sub.Features.ActiveRequests, sub.EndDate,
		); err != nil {
			log.Printf("Could not send subscription activation email: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Subscription activated",
	})
}

func handleChargeFailed(c *fiber.Ctx, event *paystack.WebhookEvent) error {
	var sub model.Subscription
	if err := database.DB.Where("payment_reference = ?", event.Data.Reference).
		First(&sub).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Unknown payment reference")
	}

	// Teslimat sırası garanti değil: success'ten sonra gelen bayat
	// charge.failed başarılı ödemeyi ezemez
	if sub.Payment.Status == model.PaymentStatusSuccess {
		return c.JSON(fiber.Map{
			"message": "Already processed",
		})
	}

	// Abonelik pending kalır; kullanıcı ödemeyi tekrar deneyebilir
	if err := database.DB.Model(&sub).
		Update("payment_status", model.PaymentStatusFailed).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not record failed payment",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Payment failure recorded",
	})
}
