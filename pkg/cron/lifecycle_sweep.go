package cron

import (
	"log"
	"time"

	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func InitLifecycleSweepCron() {
	c := cron.New()

	_, err := c.AddFunc("30 0 * * *", func() {
		closeExpiredRequests()
		autoRejectStaleProposals()
	})

	if err != nil {
		log.Printf("Could not initialize lifecycle sweep cron: %v", err)
		return
	}

	c.Start()
}

// closeExpiredRequests son geçerlilik tarihi geçmiş açık talepleri kapatır.
func closeExpiredRequests() {
	result := database.DB.Model(&model.ServiceRequest{}).
		Where("status IN ? AND expires_at < ?",
			[]model.RequestStatus{model.RequestStatusOpen, model.RequestStatusReviewing}, time.Now()).
		Update("status", model.RequestStatusClosed)

	if result.Error != nil {
		log.Printf("Error closing expired requests: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Closed %d expired requests", result.RowsAffected)
	}
}

// autoRejectStaleProposals yanıtsız kalan pending teklifleri müşteri reddiyle
// aynı yoldan reddeder; özet senkronizasyonu ve otomatik yeniden açma kuralı
// burada da işler.
func autoRejectStaleProposals() {
	var proposals []model.Proposal
	err := database.DB.Where("status = ? AND auto_reject_at < ?",
		model.ProposalStatusPending, time.Now()).
		Find(&proposals).Error
	if err != nil {
		log.Printf("Error fetching stale proposals: %v", err)
		return
	}

	now := time.Now()
	for _, proposal := range proposals {
		p := proposal
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var request model.ServiceRequest
			if err := database.LockForUpdate(tx).First(&request, p.RequestID).Error; err != nil {
				return err
			}

			p.Status = model.ProposalStatusRejected
			p.RespondedAt = &now
			if err := tx.Save(&p).Error; err != nil {
				return err
			}

			request.ResolveSummary(p.ID, model.ProposalStatusRejected)
			return tx.Save(&request).Error
		})
		if err != nil {
			log.Printf("Error auto-rejecting proposal %d: %v", p.ID, err)
		}
	}

	if len(proposals) > 0 {
		log.Printf("Auto-rejected %d stale proposals", len(proposals))
	}
}
