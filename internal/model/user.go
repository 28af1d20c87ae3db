package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User Roles
type UserRole string

const (
	RoleClient   UserRole = "client"
	RoleCreative UserRole = "creative"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	gorm.Model
	Email    string   `gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Username string   `gorm:"uniqueIndex;not null"`
	Role     UserRole `json:"role" gorm:"not null;default:'client'"`

	// Opsiyonel profil bilgileri
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PhoneNumber    string `json:"phone_number"`
	WhatsAppNumber string `json:"whats_app_number"`
	Location       string `json:"location"`
	Avatar         string `json:"avatar"`

	// Sistem bilgileri
	IsVerified bool `json:"is_verified" gorm:"default:false"`

	// Abonelik alanları: Subscription aktivasyonu yazar, kota kontrolleri okur
	SubscriptionPlan   string     `json:"subscription_plan" gorm:"default:'free'"`
	SubscriptionStatus string     `json:"subscription_status" gorm:"default:'active'"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`

	// Creative'in ömür boyu gönderdiği teklif sayısı
	TotalProposals int `json:"total_proposals" gorm:"default:0"`

	// İlişkiler
	ServiceRequests []ServiceRequest `json:"-" gorm:"foreignKey:ClientID"`
	Proposals       []Proposal       `json:"-" gorm:"foreignKey:CreativeID"`
	Subscriptions   []Subscription   `json:"-"`
}

func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ContactNumber WhatsApp linki için kullanılacak numara; WhatsApp numarası
// yoksa telefon numarasına düşer.
func (u *User) ContactNumber() string {
	if u.WhatsAppNumber != "" {
		return u.WhatsAppNumber
	}
	return u.PhoneNumber
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":          u.ID,
		"username":    u.Username,
		"role":        u.Role,
		"full_name":   u.GetFullName(),
		"location":    u.Location,
		"avatar":      u.Avatar,
		"is_verified": u.IsVerified,
	}
}
