package controller

import (
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
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscribeInput struct {
	Plan   subscription.Plan   `json:"plan" validate:"required"`
	Period subscription.Period `json:"period" validate:"required"`
}

type UpgradeInput struct {
	Plan subscription.Plan `json:"plan" validate:"required"`
}

var paystackClient *paystack.Client

func InitSubscriptionController() {
	paystackClient = paystack.NewClient(os.Getenv("PAYSTACK_SECRET_KEY"))
}

func newPaymentReference() string {
	return "LL-" + uuid.NewString()
}

func ListPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"features": subscription.PlanFeatures,
		"prices":   subscription.PlanPrices,
	})
}

// liveSubscription kullanıcının aktif ve süresi dolmamış aboneliği.
func liveSubscription(userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := database.DB.Where("user_id = ? AND status = ?", userID, model.SubscriptionStatusActive).
		Order("created_at desc").First(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.IsExpired(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	return &sub, nil
}

// CreateFreeSubscription ödeme adımı olmadan free plana geçirir; mevcut
// ücretli abonelikler iptal edilir.
func CreateFreeSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ? AND plan != ?", claims.UserID, model.SubscriptionStatusActive, subscription.FreePlan).
			Updates(map[string]interface{}{
				"status":     model.SubscriptionStatusCancelled,
				"auto_renew": false,
			}).Error; err != nil {
			return err
		}

		sub := model.Subscription{
			UserID:    claims.UserID,
			Plan:      subscription.FreePlan,
			Period:    subscription.PeriodMonthly,
			Status:    model.SubscriptionStatusActive,
			StartDate: time.Now(),
			EndDate:   nil, // free asla dolmaz
			AutoRenew: false,
		}
		sub.RefreshFeatures()
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", claims.UserID).
			Updates(map[string]interface{}{
				"subscription_plan":   string(subscription.FreePlan),
				"subscription_status": string(model.SubscriptionStatusActive),
				"subscription_expiry": nil,
			}).Error
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create subscription",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Free plan activated",
	})
}

// CreatePaidSubscription pending abonelik yazar ve ödeme sağlayıcının redirect
// URL'ini döner. Aktivasyon yalnızca webhook ile olur.
func CreatePaidSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(SubscribeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Plan != subscription.BasicPlan && input.Plan != subscription.ProPlan {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidPlan, "Plan must be basic or pro")
	}
	if !subscription.IsValidPeriod(input.Period) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Period must be monthly, quarterly or yearly",
		})
	}

	if existing, err := liveSubscription(claims.UserID); err == nil && existing.Plan != subscription.FreePlan {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeAlreadySubscribed, "You already have an active subscription. Use upgrade instead.")
	}

	var user model.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "User not found")
	}

	amount := subscription.GetPlanPrice(input.Plan, input.Period)
	reference := newPaymentReference()

	// Önce pending placeholder yazılır; sağlayıcı hiçbir zaman bizde karşılığı
	// olmayan bir referans tutmaz
	sub := model.Subscription{
		UserID:    claims.UserID,
		Plan:      input.Plan,
		Period:    input.Period,
		Status:    model.SubscriptionStatusPending,
		StartDate: time.Now(),
		AutoRenew: true,
		Payment: model.PaymentInfo{
			Provider:  "paystack",
			Reference: reference,
			Amount:    amount,
			Currency:  "NGN",
			Status:    model.PaymentStatusPending,
		},
	}
	sub.RefreshFeatures()

	if err := database.DB.Create(&sub).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save subscription",
		})
	}

	redirectURL, err := paystackClient.InitializeTransaction(user.Email, amount, reference, os.Getenv("PAYMENT_CALLBACK_URL"))
	if err != nil {
		log.Printf("Could not initialize payment: %v", err)
		database.DB.Model(&sub).Update("payment_status", model.PaymentStatusCancelled)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not initialize payment",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Complete your payment to activate the subscription",
		"redirect_url": redirectURL,
		"reference":    reference,
	})
}

func CancelSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var sub model.Subscription
	query := database.DB.Preload("User")
	if id := c.Params("id"); id != "" && claims.Role == string(model.RoleAdmin) {
		if err := query.First(&sub, id).Error; err != nil {
			return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Subscription not found")
		}
	} else {
		if err := query.Where("user_id = ? AND status = ?", claims.UserID, model.SubscriptionStatusActive).
			Order("created_at desc").First(&sub).Error; err != nil {
			return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "No active subscription found")
		}
	}

	if sub.UserID != claims.UserID && claims.Role != string(model.RoleAdmin) {
		return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "You don't have permission to cancel this subscription")
	}

	if sub.Plan == subscription.FreePlan {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidPlan, "The free plan cannot be cancelled")
	}

	if sub.Status != model.SubscriptionStatusActive {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Only active subscriptions can be cancelled")
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		sub.Status = model.SubscriptionStatusCancelled
		sub.AutoRenew = false
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		// Özellikler endDate'e kadar korunur; sadece durum güncellenir
		return tx.Model(&model.User{}).Where("id = ?", sub.UserID).
			Update("subscription_status", string(model.SubscriptionStatusCancelled)).Error
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not cancel subscription",
		})
	}

	if email.GlobalEmailService != nil && sub.EndDate != nil {
		if err := email.GlobalEmailService.SendSubscriptionCancelledEmail(
			sub.User.Email, sub.User.GetFullName(), string(sub.Plan), *sub.EndDate,
		); err != nil {
			log.Printf("Could not send subscription cancellation email: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Subscription cancelled",
	})
}

// UpgradeSubscription pro-rata fark hesaplar. Fark sıfırsa plan hemen değişir;
// değilse yeni pending abonelik yazılır ve ödeme linki döner. Mevcut abonelik
// webhook gelene kadar dokunulmaz.
func UpgradeSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(UpgradeInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if !subscription.IsValidPlan(input.Plan) {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidPlan, "Unknown plan")
	}

	sub, err := liveSubscription(claims.UserID)
	if err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "No active subscription found")
	}

	if !subscription.IsUpgrade(sub.Plan, input.Plan) {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidUpgrade,
			fmt.Sprintf("Plan %s is not an upgrade from %s", input.Plan, sub.Plan))
	}

	periodDays := subscription.PeriodDays(sub.Period)
	daysUsed := int(time.Since(sub.StartDate).Hours() / 24)
	if daysUsed < 0 {
		daysUsed = 0
	}
	if daysUsed > periodDays {
		daysUsed = periodDays
	}

	currentPrice := subscription.GetPlanPrice(sub.Plan, sub.Period)
	newPrice := subscription.GetPlanPrice(input.Plan, sub.Period)
	unused := currentPrice * int64(periodDays-daysUsed) / int64(periodDays)
	amountDue := newPrice - unused
	if amountDue < 0 {
		amountDue = 0
	}

	if amountDue == 0 {
		// Kullanılmamış bakiye yeni planı karşılıyor; hemen uygula
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			sub.Plan = input.Plan
			sub.RefreshFeatures()
			if err := tx.Save(sub).Error; err != nil {
				return err
			}
			return tx.Model(&model.User{}).Where("id = ?", claims.UserID).
				Update("subscription_plan", string(input.Plan)).Error
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not upgrade subscription",
			})
		}
		return c.JSON(fiber.Map{
			"message": "Plan upgraded",
			"plan":    input.Plan,
		})
	}

	var user model.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "User not found")
	}

	reference := newPaymentReference()

	// Placeholder önce; sağlayıcı başarısız olursa ödeme iptal işaretlenir
	upgrade := model.Subscription{
		UserID:    claims.UserID,
		Plan:      input.Plan,
		Period:    sub.Period,
		Status:    model.SubscriptionStatusPending,
		StartDate: time.Now(),
		AutoRenew: sub.AutoRenew,
		Payment: model.PaymentInfo{
			Provider:  "paystack",
			Reference: reference,
			Amount:    amountDue,
			Currency:  "NGN",
			Status:    model.PaymentStatusPending,
		},
	}
	upgrade.RefreshFeatures()

	if err := database.DB.Create(&upgrade).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save subscription",
		})
	}

	redirectURL, err := paystackClient.InitializeTransaction(user.Email, amountDue, reference, os.Getenv("PAYMENT_CALLBACK_URL"))
	if err != nil {
		log.Printf("Could not initialize upgrade payment: %v", err)
		database.DB.Model(&upgrade).Update("payment_status", model.PaymentStatusCancelled)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not initialize payment",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Complete your payment to activate the upgrade",
		"redirect_url": redirectURL,
		"reference":    reference,
		"amount_due":   amountDue,
	})
}

func GetMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	sub, err := liveSubscription(claims.UserID)
	if err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "No active subscription found")
	}

	return c.JSON(sub)
}
