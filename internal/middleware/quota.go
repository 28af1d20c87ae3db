package middleware

import (
	"fmt"
	"time"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/subscription"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// CheckRequestQuota müşterinin açık+reviewing talep sayısını plan limitine
// karşı kontrol eder. Admin limitlere tabi değildir.
func CheckRequestQuota() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		if claims.Role == string(model.RoleAdmin) {
			return c.Next()
		}

		limits := LimitsForUser(claims.UserID)

		var activeCount int64
		database.DB.Model(&model.ServiceRequest{}).
			Where("client_id = ? AND status IN ?", claims.UserID,
				[]model.RequestStatus{model.RequestStatusOpen, model.RequestStatusReviewing}).
			Count(&activeCount)

		if int(activeCount) >= limits.ActiveRequests {
			return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeQuotaExceeded,
				fmt.Sprintf("You have reached your active request limit (%d). Please upgrade your plan.", limits.ActiveRequests))
		}

		return c.Next()
	}
}

// LimitsForUser kullanıcının canlı aboneliğinden plan limitlerini çözer.
// Canlı abonelik yoksa free tablosuna düşer.
func LimitsForUser(userID uint) subscription.PlanLimits {
	return subscription.GetPlanLimits(PlanForUser(userID))
}

func PlanForUser(userID uint) subscription.Plan {
	var user model.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return subscription.FreePlan
	}
	return PlanForUserRecord(&user)
}

// PlanForUserRecord tembel süre kontrolüyle plan çözer: cancelled abonelik
// bitiş tarihine kadar özelliklerini korur, tarihi geçmişse free'ye düşer.
func PlanForUserRecord(user *model.User) subscription.Plan {
	status := user.SubscriptionStatus
	if status != string(model.SubscriptionStatusActive) && status != string(model.SubscriptionStatusCancelled) {
		return subscription.FreePlan
	}
	if user.SubscriptionExpiry != nil && user.SubscriptionExpiry.Before(time.Now()) {
		return subscription.FreePlan
	}
	return subscription.Plan(user.SubscriptionPlan)
}
