package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreativeProfile teklif verebilmenin ön koşulu olan sağlayıcı profili.
type CreativeProfile struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	DisplayName string                      `json:"display_name" gorm:"not null"`
	Bio         string                      `json:"bio" gorm:"type:text"`
	Specialties datatypes.JSONSlice[string] `json:"specialties"`
	ServiceArea string                      `json:"service_area"`
	YearsActive int                         `json:"years_active"`

	PortfolioImages datatypes.JSONSlice[string] `json:"portfolio_images"`

	// İlişkiler
	User User `json:"-" gorm:"foreignKey:UserID"`
}
