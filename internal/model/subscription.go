package model

import (
	"time"

	"lenslink_backend/pkg/subscription"

	"gorm.io/gorm"
)

// Subscription Status
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Payment Status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentInfo ödeme sağlayıcı alt kaydı. Reference webhook eşleşmesinin anahtarıdır.
type PaymentInfo struct {
	Provider      string        `json:"provider"`
	Reference     string        `json:"reference" gorm:"uniqueIndex"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status" gorm:"default:'pending'"`
	TransactionID string        `json:"transaction_id"`
	PaidAt        *time.Time    `json:"paid_at"`
}

type Subscription struct {
	gorm.Model
	UserID uint                `json:"user_id" gorm:"index;not null"`
	Plan   subscription.Plan   `json:"plan" gorm:"not null"`
	Period subscription.Period `json:"period" gorm:"default:'monthly'"`
	Status SubscriptionStatus  `json:"status" gorm:"default:'pending';index"`

	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"` // free planlarda null, asla dolmaz
	AutoRenew bool       `json:"auto_renew" gorm:"default:true"`

	Payment PaymentInfo `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`

	// Kayıt anındaki plan özellikleri; plan her değiştiğinde yeniden hesaplanır
	Features subscription.PlanLimits `json:"features" gorm:"embedded;embeddedPrefix:feature_"`

	// İlişkiler
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// RefreshFeatures features alanını planın güncel tablosundan yeniden yazar.
// Plan değiştiren her kayıt öncesi çağrılmalıdır.
func (s *Subscription) RefreshFeatures() {
	s.Features = subscription.GetPlanLimits(s.Plan)
}

// IsExpired endDate geçmiş mi (tembel kontrol, free planlar süresizdir).
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.EndDate != nil && s.EndDate.Before(now)
}

// IsLive aktif ve süresi dolmamış mı.
func (s *Subscription) IsLive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && !s.IsExpired(now)
}
