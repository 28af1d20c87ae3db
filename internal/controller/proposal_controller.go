package controller

import (
	"fmt"
	"log"
	"time"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/middleware"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/email"
	"lenslink_backend/pkg/utils/jwt"
	"lenslink_backend/pkg/utils/whatsapp"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProposalInput struct {
	RequestID      uint           `json:"request_id" validate:"required"`
	Message        string         `json:"message" validate:"required"`
	QuoteAmount    float64        `json:"quote_amount" validate:"required"`
	QuoteCurrency  model.Currency `json:"quote_currency"`
	QuoteBreakdown string         `json:"quote_breakdown"`
	Timeline       string         `json:"timeline"`
	PortfolioLinks []string       `json:"portfolio_links"`
}

type ProposalUpdateInput struct {
	Message        string         `json:"message"`
	QuoteAmount    float64        `json:"quote_amount"`
	QuoteCurrency  model.Currency `json:"quote_currency"`
	QuoteBreakdown string         `json:"quote_breakdown"`
	Timeline       string         `json:"timeline"`
	PortfolioLinks []string       `json:"portfolio_links"`
}

func InitProposalController() {}

// monthStart creative'in aylık kotasının sıfırlandığı takvim ayı başlangıcı.
func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// SubmitProposal teklif gönderir. Ön koşullar sırayla: profil var mı, talep
// var mı, talep açık mı, aynı talebe ikinci teklif mi, aylık kota doldu mu,
// talep 5 teklif sınırında mı. Sınır kontrolü ve özet ekleme tek
// transaction'da, talep satırı kilitliyken yapılır.
func SubmitProposal(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ProposalInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var profile model.CreativeProfile
	if err := database.DB.Where("user_id = ?", claims.UserID).First(&profile).Error; err != nil {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeProfileRequired, "Create your creative profile before submitting proposals")
	}

	var request model.ServiceRequest
	if err := database.DB.First(&request, input.RequestID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Request not found")
	}

	if request.Status != model.RequestStatusOpen {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeRequestNotOpen, "This request is not accepting proposals")
	}

	var duplicate int64
	database.DB.Model(&model.Proposal{}).
		Where("request_id = ? AND creative_id = ?", request.ID, claims.UserID).
		Count(&duplicate)
	if duplicate > 0 {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeDuplicateProposal, "You already submitted a proposal for this request")
	}

	limits := middleware.LimitsForUser(claims.UserID)
	var monthlyCount int64
	database.DB.Model(&model.Proposal{}).
		Where("creative_id = ? AND submitted_at >= ?", claims.UserID, monthStart(time.Now())).
		Count(&monthlyCount)
	if int(monthlyCount) >= limits.ProposalsPerMonth {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeQuotaExceeded,
			fmt.Sprintf("You have used all %d proposals for this month. Please upgrade your plan.", limits.ProposalsPerMonth))
	}

	if request.ProposalCount >= model.MaxProposalsPerRequest {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeProposalCapReached, "This request already has the maximum number of proposals")
	}

	var creative model.User
	if err := database.DB.First(&creative, claims.UserID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "User not found")
	}

	currency := input.QuoteCurrency
	if currency == "" {
		currency = model.CurrencyNGN
	}

	now := time.Now()
	proposal := model.Proposal{
		RequestID:      request.ID,
		CreativeID:     claims.UserID,
		Message:        input.Message,
		QuoteAmount:    input.QuoteAmount,
		QuoteCurrency:  currency,
		QuoteBreakdown: input.QuoteBreakdown,
		Timeline:       input.Timeline,
		PortfolioLinks: input.PortfolioLinks,
		Status:         model.ProposalStatusPending,
		WhatsApp: model.WhatsAppContact{
			Number: creative.ContactNumber(),
		},
		SubmittedAt:  now,
		AutoRejectAt: now.AddDate(0, 0, model.ProposalAutoRejectDays),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var locked model.ServiceRequest
		if err := database.LockForUpdate(tx).First(&locked, request.ID).Error; err != nil {
			return err
		}

		// Kilit altında yeniden kontrol: iki eşzamanlı teklif sınırı aşamaz
		if locked.Status != model.RequestStatusOpen {
			return errRequestNotOpen
		}
		if locked.ProposalCount >= model.MaxProposalsPerRequest {
			return errCapReached
		}

		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}

		locked.AppendSummary(claims.UserID, proposal.ID)
		if err := tx.Save(&locked).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", claims.UserID).
			UpdateColumn("total_proposals", gorm.Expr("total_proposals + 1")).Error
	})

	if err == errRequestNotOpen {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeRequestNotOpen, "This request is not accepting proposals")
	}
	if err == errCapReached {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeProposalCapReached, "This request already has the maximum number of proposals")
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not submit proposal",
		})
	}

	if email.GlobalEmailService != nil {
		var client model.User
		if err := database.DB.First(&client, request.ClientID).Error; err == nil {
			if err := email.GlobalEmailService.SendProposalReceivedEmail(
				client.Email, request.Title, profile.DisplayName,
				proposal.QuoteAmount, string(proposal.QuoteCurrency),
			); err != nil {
				log.Printf("Could not send proposal notification email: %v", err)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(proposal)
}

var (
	errRequestNotOpen = fmt.Errorf("request not open")
	errCapReached     = fmt.Errorf("proposal cap reached")
)

// UpdateProposal yalnızca gönderen creative (veya admin), yalnızca pending durumda.
// Talep ve creative referansları değiştirilemez; girdi payload'ında yoklar.
func UpdateProposal(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var proposal model.Proposal
	if err := database.DB.First(&proposal, c.Params("id")).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Proposal not found")
	}

	if proposal.CreativeID != claims.UserID && claims.Role != string(model.RoleAdmin) {
		return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "You don't have permission to update this proposal")
	}

	if proposal.Status != model.ProposalStatusPending {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Only pending proposals can be updated")
	}

	input := new(ProposalUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Message != "" {
		proposal.Message = input.Message
	}
	if input.QuoteAmount > 0 {
		proposal.QuoteAmount = input.QuoteAmount
	}
	if input.QuoteCurrency != "" {
		proposal.QuoteCurrency = input.QuoteCurrency
	}
	if input.QuoteBreakdown != "" {
		proposal.QuoteBreakdown = input.QuoteBreakdown
	}
	if input.Timeline != "" {
		proposal.Timeline = input.Timeline
	}
	if input.PortfolioLinks != nil {
		proposal.PortfolioLinks = input.PortfolioLinks
	}

	if err := database.DB.Save(&proposal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update proposal",
		})
	}

	return c.JSON(proposal)
}

// AcceptProposal teklifi kabul eder: talep kapanır, bekleyen kardeş teklifler
// reddedilir. Üçü tek transaction'dır; kısmi sonuç asla kalıcı olmaz.
func AcceptProposal(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var proposal model.Proposal
	if err := database.DB.First(&proposal, c.Params("id")).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Proposal not found")
	}

	var request model.ServiceRequest
	if err := database.DB.First(&request, proposal.RequestID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Request not found")
	}

	if request.ClientID != claims.UserID && claims.Role != string(model.RoleAdmin) {
		return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "Only the request owner can accept proposals")
	}

	if proposal.Status != model.ProposalStatusPending {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Only pending proposals can be accepted")
	}

	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var locked model.ServiceRequest
		if err := database.LockForUpdate(tx).First(&locked, request.ID).Error; err != nil {
			return err
		}

		proposal.Status = model.ProposalStatusAccepted
		proposal.RespondedAt = &now
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}

		// Kabul talebi kapatır
		locked.ResolveSummary(proposal.ID, model.ProposalStatusAccepted)

		// Bekleyen kardeşler toplu reddedilir; "aynı talepte en fazla bir
		// kabul" bu adımla sağlanır
		if err := tx.Model(&model.Proposal{}).
			Where("request_id = ? AND id != ? AND status = ?", locked.ID, proposal.ID, model.ProposalStatusPending).
			Updates(map[string]interface{}{
				"status":       model.ProposalStatusRejected,
				"responded_at": now,
			}).Error; err != nil {
			return err
		}

		for i := range locked.ProposalSummaries {
			if locked.ProposalSummaries[i].ProposalID != proposal.ID &&
				locked.ProposalSummaries[i].Status == model.ProposalStatusPending {
				locked.ProposalSummaries[i].Status = model.ProposalStatusRejected
			}
		}

		return tx.Save(&locked).Error
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not accept proposal",
		})
	}

	if email.GlobalEmailService != nil {
		var creative model.User
		var client model.User
		if database.DB.First(&creative, proposal.CreativeID).Error == nil &&
			database.DB.First(&client, request.ClientID).Error == nil {
			if err := email.GlobalEmailService.SendProposalAcceptedEmail(
				creative.Email, creative.GetFullName(), request.Title, client.GetFullName(),
			); err != nil {
				log.Printf("Could not send acceptance email: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"message":  "Proposal accepted",
		"proposal": proposal,
	})
}

// RejectProposal tek teklifi reddeder; tüm özetler reddedilmiş kapalı talep
// model katmanında otomatik yeniden açılır.
func RejectProposal(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var proposal model.Proposal
	if err := database.DB.First(&proposal, c.Params("id")).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Proposal not found")
	}

	var request model.ServiceRequest
	if err := database.DB.First(&request, proposal.RequestID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Request not found")
	}

	if request.ClientID != claims.UserID && claims.Role != string(model.RoleAdmin) {
		return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "Only the request owner can reject proposals")
	}

	if proposal.Status != model.ProposalStatusPending {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Only pending proposals can be rejected")
	}

	now := time.Now()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var locked model.ServiceRequest
		if err := database.LockForUpdate(tx).First(&locked, request.ID).Error; err != nil {
			return err
		}

		proposal.Status = model.ProposalStatusRejected
		proposal.RespondedAt = &now
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}

		locked.ResolveSummary(proposal.ID, model.ProposalStatusRejected)
		return tx.Save(&locked).Error
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not reject proposal",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Proposal rejected",
		"proposal": proposal,
	})
}

// WithdrawProposal creative kendi teklifini geri çeker; özet tamamen silinir.
func WithdrawProposal(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var proposal model.Proposal
	if err := database.DB.First(&proposal, c.Params("id")).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Proposal not found")
	}

	if proposal.CreativeID != claims.UserID && claims.Role != string(model.RoleAdmin) {
		return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "You don't have permission to withdraw this proposal")
	}

	if proposal.Status != model.ProposalStatusPending {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Only pending proposals can be withdrawn")
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var locked model.ServiceRequest
		if err := database.LockForUpdate(tx).First(&locked, proposal.RequestID).Error; err != nil {
			return err
		}

		proposal.Status = model.ProposalStatusWithdrawn
		if err := tx.Save(&proposal).Error; err != nil {
			return err
		}

		locked.RemoveSummary(proposal.ID)
		return tx.Save(&locked).Error
	})

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not withdraw proposal",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Proposal withdrawn",
		"proposal": proposal,
	})
}

// GenerateContactLink kabul edilen teklif için wa.me linki üretir. Harici
// çağrı yok; yan etki linkin üretildiğinin işaretlenmesidir.
func GenerateContactLink(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var proposal model.Proposal
	if err := database.DB.Preload("Creative").First(&proposal, c.Params("id")).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Proposal not found")
	}

	var request model.ServiceRequest
	if err := database.DB.First(&request, proposal.RequestID).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Request not found")
	}

	if request.ClientID != claims.UserID && claims.Role != string(model.RoleAdmin) {
		return apperror.JSON(c, fiber.StatusForbidden, apperror.CodeNotAuthorized, "Only the request owner can contact the creative")
	}

	if proposal.Status != model.ProposalStatusAccepted {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Contact link is only available for accepted proposals")
	}

	message := whatsapp.BuildAcceptanceMessage(proposal.Creative.GetFullName(), request.Title)
	link := whatsapp.BuildContactLink(proposal.WhatsApp.Number, message)

	now := time.Now()
	proposal.WhatsApp.MessageSent = true
	proposal.WhatsApp.SentAt = &now
	if err := database.DB.Save(&proposal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update proposal",
		})
	}

	return c.JSON(fiber.Map{
		"contact_link": link,
		"message":      message,
	})
}

func GetMyProposals(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var proposals []model.Proposal
	query := database.DB.Where("creative_id = ?", claims.UserID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at desc").Find(&proposals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch proposals",
		})
	}

	return c.JSON(proposals)
}

// GetRequestProposals müşterinin talebindeki teklif detayları. Okunan pending
// teklifler client_viewed olarak işaretlenir.
func GetRequestProposals(c *fiber.Ctx) error {
	request := c.Locals("request").(*model.ServiceRequest)

	var proposals []model.Proposal
	if err := database.DB.Where("request_id = ?", request.ID).
		Preload("Creative").
		Order("created_at asc").
		Find(&proposals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch proposals",
		})
	}

	now := time.Now()
	for i := range proposals {
		if !proposals[i].ClientViewed {
			database.DB.Model(&proposals[i]).Updates(map[string]interface{}{
				"client_viewed": true,
				"viewed_at":     now,
			})
		}
	}

	return c.JSON(proposals)
}
