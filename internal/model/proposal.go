package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Proposal Status
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
)

// Yanıtsız kalan teklifler bu süre sonunda süpürücü tarafından reddedilir.
const ProposalAutoRejectDays = 7

// WhatsAppContact kabul sonrası müşteriye açılan iletişim kaydı.
type WhatsAppContact struct {
	Number      string     `json:"number"`
	MessageSent bool       `json:"message_sent" gorm:"default:false"`
	SentAt      *time.Time `json:"sent_at"`
}

type Proposal struct {
	gorm.Model
	RequestID  uint `json:"request_id" gorm:"uniqueIndex:idx_request_creative;not null"`
	CreativeID uint `json:"creative_id" gorm:"uniqueIndex:idx_request_creative;not null"`

	Message        string                      `json:"message" gorm:"type:text"`
	QuoteAmount    float64                     `json:"quote_amount"`
	QuoteCurrency  Currency                    `json:"quote_currency" gorm:"default:'NGN'"`
	QuoteBreakdown string                      `json:"quote_breakdown" gorm:"type:text"`
	Timeline       string                      `json:"timeline"`
	PortfolioLinks datatypes.JSONSlice[string] `json:"portfolio_links"`

	Status       ProposalStatus `json:"status" gorm:"default:'pending';index"`
	ClientViewed bool           `json:"client_viewed" gorm:"default:false"`

	WhatsApp WhatsAppContact `json:"whatsapp" gorm:"embedded;embeddedPrefix:whatsapp_"`

	SubmittedAt  time.Time  `json:"submitted_at"`
	ViewedAt     *time.Time `json:"viewed_at"`
	RespondedAt  *time.Time `json:"responded_at"`
	AutoRejectAt time.Time  `json:"auto_reject_at"`

	// İlişkiler
	Request  ServiceRequest `json:"-" gorm:"foreignKey:RequestID"`
	Creative User           `json:"creative" gorm:"foreignKey:CreativeID"`
}

// IsTerminal accepted/rejected/withdrawn durumlarından çıkış yoktur.
func (p *Proposal) IsTerminal() bool {
	return p.Status != ProposalStatusPending
}
