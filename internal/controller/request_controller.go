package controller

import (
	"fmt"
	"time"

	"lenslink_backend/internal/apperror"
	"lenslink_backend/internal/middleware"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/database"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

type RequestInput struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	ServiceType model.ServiceType `json:"service_type" validate:"required"`
	BudgetMin   float64           `json:"budget_min"`
	BudgetMax   float64           `json:"budget_max"`
	Currency    model.Currency    `json:"currency"`
	Location    string            `json:"location"`
	EventDate   *time.Time        `json:"event_date"`
}

func InitRequestController() {}

// CreateRequest yeni hizmet talebi açar. Aktif talep kotası route üzerindeki
// CheckRequestQuota middleware'inde kontrol edilir.
func CreateRequest(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(RequestInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if input.Title == "" || input.ServiceType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and service type are required",
		})
	}

	currency := input.Currency
	if currency == "" {
		currency = model.CurrencyNGN
	}

	request := model.ServiceRequest{
		ClientID:    claims.UserID,
		Title:       input.Title,
		Slug:        slug.Make(input.Title),
		Description: input.Description,
		ServiceType: input.ServiceType,
		BudgetMin:   input.BudgetMin,
		BudgetMax:   input.BudgetMax,
		Currency:    currency,
		Location:    input.Location,
		EventDate:   input.EventDate,
		Status:      model.RequestStatusOpen,
		ExpiresAt:   time.Now().AddDate(0, 0, model.RequestExpiryDays),
	}

	if err := database.DB.Create(&request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func ListMyRequests(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var requests []model.ServiceRequest
	query := database.DB.Where("client_id = ?", claims.UserID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at desc").Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch requests",
		})
	}

	return c.JSON(requests)
}

// BrowseRequests creative'lerin açık talepleri listelediği uç. Bütçe alanları
// yalnızca planında can_see_budget olan kullanıcıya döner.
func BrowseRequests(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	limits := middleware.LimitsForUser(claims.UserID)

	query := database.DB.Model(&model.ServiceRequest{}).
		Where("status = ?", model.RequestStatusOpen).
		Where("expires_at > ?", time.Now())

	if serviceType := c.Query("service_type"); serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}

	if location := c.Query("location"); location != "" {
		query = query.Where("location LIKE ?", "%"+location+"%")
	}

	var requests []model.ServiceRequest
	if err := query.Order("created_at desc").Limit(100).Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch requests",
		})
	}

	views := make([]map[string]interface{}, 0, len(requests))
	for i := range requests {
		views = append(views, requests[i].PublicView(limits.CanSeeBudget))
	}

	return c.JSON(views)
}

func GetRequest(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var request model.ServiceRequest
	if err := database.DB.First(&request, c.Params("id")).Error; err != nil {
		return apperror.JSON(c, fiber.StatusNotFound, apperror.CodeNotFound, "Request not found")
	}

	// Sahip ve admin her şeyi görür
	if request.ClientID == claims.UserID || claims.Role == string(model.RoleAdmin) {
		return c.JSON(request)
	}

	limits := middleware.LimitsForUser(claims.UserID)
	return c.JSON(request.PublicView(limits.CanSeeBudget))
}

// CloseRequest sahibin (veya adminin) talebi kapatması. Her zaman izinlidir.
func CloseRequest(c *fiber.Ctx) error {
	request := c.Locals("request").(*model.ServiceRequest)

	request.Status = model.RequestStatusClosed
	if err := database.DB.Save(request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not close request",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Request closed",
		"request": request,
	})
}

// ReopenRequest kapalı talebi tekrar açar; özet listesi dolu taleplerde reddedilir.
func ReopenRequest(c *fiber.Ctx) error {
	request := c.Locals("request").(*model.ServiceRequest)

	if request.Status != model.RequestStatusClosed {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeInvalidState, "Only closed requests can be reopened")
	}

	if request.ProposalCount >= model.MaxProposalsPerRequest {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeProposalCapReached,
			fmt.Sprintf("Request already has %d proposals", model.MaxProposalsPerRequest))
	}

	request.Status = model.RequestStatusOpen
	if err := database.DB.Save(request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not reopen request",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Request reopened",
		"request": request,
	})
}

// DeleteRequest yalnızca hiç teklif almamış talepler silinebilir.
func DeleteRequest(c *fiber.Ctx) error {
	request := c.Locals("request").(*model.ServiceRequest)

	if request.ProposalCount > 0 {
		return apperror.JSON(c, fiber.StatusBadRequest, apperror.CodeHasProposals, "Requests with proposals cannot be deleted")
	}

	if err := database.DB.Delete(request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete request",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Request deleted",
	})
}

// UpdateRequestStatus admin ucu: cancelled ve completed buradan set edilir.
func UpdateRequestStatus(c *fiber.Ctx) error {
	request := c.Locals("request").(*model.ServiceRequest)

	input := struct {
		Status model.RequestStatus `json:"status"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	switch input.Status {
	case model.RequestStatusCancelled, model.RequestStatusCompleted:
		// dış/admin aksiyonuyla erişilen durumlar
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
			"valid_statuses": []string{
				string(model.RequestStatusCancelled),
				string(model.RequestStatusCompleted),
			},
		})
	}

	request.Status = input.Status
	if err := database.DB.Save(request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update request status",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Request status updated",
		"request": request,
	})
}
