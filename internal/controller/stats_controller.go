package controller

import (
	"time"

	"lenslink_backend/internal/middleware"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// ClientStats müşteri paneli istatistikleri
type ClientStats struct {
	TotalRequests     int64            `json:"total_requests"`
	ActiveRequests    int64            `json:"active_requests"`
	ProposalsReceived int64            `json:"proposals_received"`
	AcceptedProposals int64            `json:"accepted_proposals"`
	RequestsByStatus  map[string]int64 `json:"requests_by_status"`
}

// CreativeStats creative paneli istatistikleri
type CreativeStats struct {
	TotalProposals    int64            `json:"total_proposals"`
	PendingProposals  int64            `json:"pending_proposals"`
	AcceptedProposals int64            `json:"accepted_proposals"`
	AcceptanceRate    float64          `json:"acceptance_rate"`
	MonthlyUsed       int64            `json:"monthly_used"`
	MonthlyLimit      int              `json:"monthly_limit"`
	ProposalsByStatus map[string]int64 `json:"proposals_by_status"`
}

func GetDashboardStats(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	if claims.Role == string(model.RoleCreative) {
		return creativeStats(c, claims.UserID)
	}
	return clientStats(c, claims.UserID)
}

func clientStats(c *fiber.Ctx, userID uint) error {
	db := database.GetDB()
	var stats ClientStats

	db.Model(&model.ServiceRequest{}).Where("client_id = ?", userID).Count(&stats.TotalRequests)
	db.Model(&model.ServiceRequest{}).
		Where("client_id = ? AND status IN ?", userID,
			[]model.RequestStatus{model.RequestStatusOpen, model.RequestStatusReviewing}).
		Count(&stats.ActiveRequests)

	db.Model(&model.Proposal{}).
		Joins("JOIN service_requests ON proposals.request_id = service_requests.id").
		Where("service_requests.client_id = ?", userID).
		Count(&stats.ProposalsReceived)

	db.Model(&model.Proposal{}).
		Joins("JOIN service_requests ON proposals.request_id = service_requests.id").
		Where("service_requests.client_id = ? AND proposals.status = ?", userID, model.ProposalStatusAccepted).
		Count(&stats.AcceptedProposals)

	stats.RequestsByStatus = make(map[string]int64)
	rows := []struct {
		Status string
		Count  int64
	}{}
	db.Model(&model.ServiceRequest{}).
		Select("status, count(*) as count").
		Where("client_id = ?", userID).
		Group("status").
		Scan(&rows)
	for _, row := range rows {
		stats.RequestsByStatus[row.Status] = row.Count
	}

	return c.JSON(stats)
}

func creativeStats(c *fiber.Ctx, userID uint) error {
	db := database.GetDB()
	var stats CreativeStats

	db.Model(&model.Proposal{}).Where("creative_id = ?", userID).Count(&stats.TotalProposals)
	db.Model(&model.Proposal{}).
		Where("creative_id = ? AND status = ?", userID, model.ProposalStatusPending).
		Count(&stats.PendingProposals)
	db.Model(&model.Proposal{}).
		Where("creative_id = ? AND status = ?", userID, model.ProposalStatusAccepted).
		Count(&stats.AcceptedProposals)

	responded := stats.TotalProposals - stats.PendingProposals
	if responded > 0 {
		stats.AcceptanceRate = float64(stats.AcceptedProposals) / float64(responded)
	}

	db.Model(&model.Proposal{}).
		Where("creative_id = ? AND submitted_at >= ?", userID, monthStart(time.Now())).
		Count(&stats.MonthlyUsed)
	stats.MonthlyLimit = middleware.LimitsForUser(userID).ProposalsPerMonth

	stats.ProposalsByStatus = make(map[string]int64)
	rows := []struct {
		Status string
		Count  int64
	}{}
	db.Model(&model.Proposal{}).
		Select("status, count(*) as count").
		Where("creative_id = ?", userID).
		Group("status").
		Scan(&rows)
	for _, row := range rows {
		stats.ProposalsByStatus[row.Status] = row.Count
	}

	return c.JSON(stats)
}
