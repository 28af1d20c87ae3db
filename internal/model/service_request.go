package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service Types
type ServiceType string

const (
	ServiceWedding     ServiceType = "wedding"
	ServicePortrait    ServiceType = "portrait"
	ServiceEvent       ServiceType = "event"
	ServiceCommercial  ServiceType = "commercial"
	ServiceRealEstate  ServiceType = "real_estate"
	ServiceMusicVideo  ServiceType = "music_video"
	ServiceDocumentary ServiceType = "documentary"
	ServiceBirthday    ServiceType = "birthday"
)

// Request Status
type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "open"
	RequestStatusReviewing RequestStatus = "reviewing"
	RequestStatusClosed    RequestStatus = "closed"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusCompleted RequestStatus = "completed"
)

// Currency Types
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyGHS Currency = "GHS"
	CurrencyUSD Currency = "USD"
)

// Bir talep en fazla bu kadar teklif taşır; sınıra ulaşınca talep
// otomatik olarak "reviewing" durumuna geçer.
const MaxProposalsPerRequest = 5

// RequestExpiryDays yeni taleplerin varsayılan geçerlilik süresi.
const RequestExpiryDays = 30

// ProposalSummary talebin üstünde tutulan denormalize teklif özeti.
// Teklif detayının kaynağı her zaman Proposal tablosudur.
type ProposalSummary struct {
	CreativeID uint           `json:"creative_id"`
	ProposalID uint           `json:"proposal_id"`
	Status     ProposalStatus `json:"status"`
}

type ServiceRequest struct {
	gorm.Model
	ClientID    uint        `json:"client_id" gorm:"index;not null"`
	Title       string      `json:"title" gorm:"not null"`
	Slug        string      `json:"slug" gorm:"index;not null"`
	Description string      `json:"description" gorm:"type:text"`
	ServiceType ServiceType `json:"service_type" gorm:"not null"`

	BudgetMin float64  `json:"budget_min"`
	BudgetMax float64  `json:"budget_max"`
	Currency  Currency `json:"currency" gorm:"default:'NGN'"`

	Location  string     `json:"location"`
	EventDate *time.Time `json:"event_date"`

	Status            RequestStatus                        `json:"status" gorm:"default:'open';index"`
	ProposalSummaries datatypes.JSONSlice[ProposalSummary] `json:"proposals"`
	ProposalCount     int                                  `json:"proposal_count" gorm:"default:0"`

	ExpiresAt    time.Time `json:"expires_at"`
	AutoReopened bool      `json:"auto_reopened" gorm:"default:false"`

	// İlişkiler
	Client User `json:"-" gorm:"foreignKey:ClientID"`
}

// Recount özet listesi her değiştiğinde sayaç invariantını korur:
// ProposalCount == len(ProposalSummaries).
func (r *ServiceRequest) Recount() {
	r.ProposalCount = len(r.ProposalSummaries)
}

// AppendSummary yeni bir pending özet ekler ve sayacı günceller.
// Sınıra ulaşan açık talep otomatik olarak reviewing durumuna geçer.
func (r *ServiceRequest) AppendSummary(creativeID, proposalID uint) {
	r.ProposalSummaries = append(r.ProposalSummaries, ProposalSummary{
		CreativeID: creativeID,
		ProposalID: proposalID,
		Status:     ProposalStatusPending,
	})
	r.Recount()
	if r.Status == RequestStatusOpen && r.ProposalCount >= MaxProposalsPerRequest {
		r.Status = RequestStatusReviewing
	}
}

// ResolveSummary eşleşen özetin durumunu günceller ve durum makinesini işletir.
// Kabul kapanışı her zaman kazanır; tüm özetler reddedilmişse ve kapanış
// kabul kaynaklı değilse talep bir kez otomatik yeniden açılır.
func (r *ServiceRequest) ResolveSummary(proposalID uint, status ProposalStatus) bool {
	found := false
	for i := range r.ProposalSummaries {
		if r.ProposalSummaries[i].ProposalID == proposalID {
			r.ProposalSummaries[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return false
	}
	r.Recount()

	// Önce kabul kontrolü: kabul talebi kalıcı olarak kapatır.
	if status == ProposalStatusAccepted {
		r.Status = RequestStatusClosed
		return true
	}

	// Sonra tükenme kontrolü: kapalı talepte kabul yoksa ve kalan tüm
	// özetler rejected ise otomatik yeniden aç.
	if r.Status == RequestStatusClosed && !r.HasAcceptedSummary() && r.allSummariesRejected() {
		r.Status = RequestStatusOpen
		r.AutoReopened = true
	}
	return true
}

// RemoveSummary geri çekilen teklifin özetini tamamen listeden çıkarır
// (durum güncellemesi değil). Sayı sınırın altına düşerse reviewing
// durumundaki talep tekrar açılır.
func (r *ServiceRequest) RemoveSummary(proposalID uint) bool {
	for i := range r.ProposalSummaries {
		if r.ProposalSummaries[i].ProposalID == proposalID {
			r.ProposalSummaries = append(r.ProposalSummaries[:i], r.ProposalSummaries[i+1:]...)
			r.Recount()
			if r.Status == RequestStatusReviewing && r.ProposalCount < MaxProposalsPerRequest {
				r.Status = RequestStatusOpen
			}
			return true
		}
	}
	return false
}

func (r *ServiceRequest) HasAcceptedSummary() bool {
	for _, s := range r.ProposalSummaries {
		if s.Status == ProposalStatusAccepted {
			return true
		}
	}
	return false
}

func (r *ServiceRequest) allSummariesRejected() bool {
	if len(r.ProposalSummaries) == 0 {
		return false
	}
	for _, s := range r.ProposalSummaries {
		if s.Status != ProposalStatusRejected {
			return false
		}
	}
	return true
}

// HasProposalFrom creative'in bu talepte zaten bir özeti var mı.
func (r *ServiceRequest) HasProposalFrom(creativeID uint) bool {
	for _, s := range r.ProposalSummaries {
		if s.CreativeID == creativeID {
			return true
		}
	}
	return false
}

func (r *ServiceRequest) IsActive() bool {
	return r.Status == RequestStatusOpen || r.Status == RequestStatusReviewing
}

// PublicView bütçeyi yalnızca görme hakkı olan planlara gösterir.
func (r *ServiceRequest) PublicView(canSeeBudget bool) map[string]interface{} {
	view := map[string]interface{}{
		"id":             r.ID,
		"client_id":      r.ClientID,
		"title":          r.Title,
		"slug":           r.Slug,
		"description":    r.Description,
		"service_type":   r.ServiceType,
		"location":       r.Location,
		"event_date":     r.EventDate,
		"status":         r.Status,
		"proposal_count": r.ProposalCount,
		"expires_at":     r.ExpiresAt,
		"created_at":     r.CreatedAt,
	}
	if canSeeBudget {
		view["budget_min"] = r.BudgetMin
		view["budget_max"] = r.BudgetMax
		view["currency"] = r.Currency
	}
	return view
}
