package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"lenslink_backend/internal/model"
)

var userSeq uint64

// TestUser test kullanıcısı oluşturur; opts ile alanlar ezilebilir.
func TestUser(t *testing.T, db *gorm.DB, role model.UserRole, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := atomic.AddUint64(&userSeq, 1)
	user := &model.User{
		Email:              fmt.Sprintf("test_%d@example.com", n),
		Password:           "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Username:           fmt.Sprintf("testuser-%d", n),
		Role:               role,
		FirstName:          "Test",
		LastName:           "User",
		PhoneNumber:        "+2348012345678",
		WhatsAppNumber:     "+234 801 234 5678",
		SubscriptionPlan:   "free",
		SubscriptionStatus: string(model.SubscriptionStatusActive),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// WithPlan kullanıcının plan etiketini değiştirir.
func WithPlan(plan string) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionPlan = plan
	}
}

// TestProfile creative profili oluşturur.
func TestProfile(t *testing.T, db *gorm.DB, userID uint) *model.CreativeProfile {
	t.Helper()

	profile := &model.CreativeProfile{
		UserID:      userID,
		DisplayName: fmt.Sprintf("Creative %d", userID),
		Bio:         "Wedding and event photographer",
		Specialties: []string{"wedding", "event"},
		ServiceArea: "Lagos",
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return profile
}

// TestRequest açık bir hizmet talebi oluşturur.
func TestRequest(t *testing.T, db *gorm.DB, clientID uint, opts ...func(*model.ServiceRequest)) *model.ServiceRequest {
	t.Helper()

	request := &model.ServiceRequest{
		ClientID:    clientID,
		Title:       "Wedding photography in Lekki",
		Slug:        "wedding-photography-in-lekki",
		Description: "Full day coverage",
		ServiceType: model.ServiceWedding,
		BudgetMin:   200000,
		BudgetMax:   350000,
		Currency:    model.CurrencyNGN,
		Location:    "Lagos",
		Status:      model.RequestStatusOpen,
		ExpiresAt:   time.Now().AddDate(0, 0, model.RequestExpiryDays),
	}

	for _, opt := range opts {
		opt(request)
	}

	if err := db.Create(request).Error; err != nil {
		t.Fatalf("Failed to create test request: %v", err)
	}
	return request
}

// TestProposal teklif oluşturur ve talebin özet listesini senkron tutar.
func TestProposal(t *testing.T, db *gorm.DB, request *model.ServiceRequest, creativeID uint, opts ...func(*model.Proposal)) *model.Proposal {
	t.Helper()

	now := time.Now()
	proposal := &model.Proposal{
		RequestID:     request.ID,
		CreativeID:    creativeID,
		Message:       "I would love to shoot this",
		QuoteAmount:   250000,
		QuoteCurrency: model.CurrencyNGN,
		Timeline:      "2 weeks",
		Status:        model.ProposalStatusPending,
		WhatsApp: model.WhatsAppContact{
			Number: "+2348012345678",
		},
		SubmittedAt:  now,
		AutoRejectAt: now.AddDate(0, 0, model.ProposalAutoRejectDays),
	}

	for _, opt := range opts {
		opt(proposal)
	}

	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}

	request.AppendSummary(creativeID, proposal.ID)
	if proposal.Status != model.ProposalStatusPending {
		request.ResolveSummary(proposal.ID, proposal.Status)
	}
	if err := db.Save(request).Error; err != nil {
		t.Fatalf("Failed to sync request summaries: %v", err)
	}

	return proposal
}

// WithSubmittedAt teklifin gönderim zamanını değiştirir (aylık kota testleri).
func WithSubmittedAt(at time.Time) func(*model.Proposal) {
	return func(p *model.Proposal) {
		p.SubmittedAt = at
	}
}

// TestSubscription abonelik kaydı oluşturur.
func TestSubscription(t *testing.T, db *gorm.DB, sub *model.Subscription) *model.Subscription {
	t.Helper()

	sub.RefreshFeatures()
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	return sub
}
