package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"lenslink_backend/internal/middleware"
	"lenslink_backend/internal/model"
	"lenslink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
)

// authAs claims'i doğrudan locals'a koyar; token üretmeye gerek kalmaz.
func authAs(user *model.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Claims{
			UserID: user.ID,
			Email:  user.Email,
			Role:   string(user.Role),
		})
		return c.Next()
	}
}

// setupApp prod route şemasının testte kullanılan alt kümesini kurar.
func setupApp(user *model.User) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")

	api.Post("/webhook/paystack", HandlePaymentWebhook)
	api.Post("/auth/register", Register)
	api.Post("/auth/login", Login)

	protected := api.Group("/", authAs(user))
	protected.Get("/dashboard/stats", GetDashboardStats)

	requests := protected.Group("/requests")
	requests.Post("/", middleware.CheckRequestQuota(), CreateRequest)
	requests.Get("/my", ListMyRequests)
	requests.Get("/browse", BrowseRequests)
	requests.Get("/:id", GetRequest)
	requests.Get("/:id/proposals", middleware.CheckRequestOwnership(), GetRequestProposals)
	requests.Put("/:id/close", middleware.CheckRequestOwnership(), CloseRequest)
	requests.Put("/:id/reopen", middleware.CheckRequestOwnership(), ReopenRequest)
	requests.Delete("/:id", middleware.CheckRequestOwnership(), DeleteRequest)

	proposals := protected.Group("/proposals")
	proposals.Post("/", SubmitProposal)
	proposals.Get("/my", GetMyProposals)
	proposals.Put("/:id", UpdateProposal)
	proposals.Put("/:id/accept", AcceptProposal)
	proposals.Put("/:id/reject", RejectProposal)
	proposals.Put("/:id/withdraw", WithdrawProposal)
	proposals.Post("/:id/contact-link", GenerateContactLink)

	profiles := protected.Group("/profiles")
	profiles.Get("/me", GetMyProfile)
	profiles.Put("/me", UpsertMyProfile)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.Get("/my", GetMySubscription)
	subscriptions.Post("/", CreatePaidSubscription)
	subscriptions.Post("/free", CreateFreeSubscription)
	subscriptions.Post("/upgrade", UpgradeSubscription)
	subscriptions.Post("/cancel", CancelSubscription)

	return app
}

// doJSON isteği çalıştırır, durum kodu ve çözümlenmiş gövdeyi döner.
func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("Failed to parse response %q: %v", string(raw), err)
		}
	}

	return resp.StatusCode, parsed
}

// doList JSON dizi dönen uçlar için.
func doList(t *testing.T, app *fiber.App, path string) []map[string]interface{} {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, string(raw))
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("Failed to parse list response %q: %v", string(raw), err)
	}
	return items
}

func doRaw(t *testing.T, app *fiber.App, method, path string, body []byte, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		json.Unmarshal(raw, &parsed)
	}

	return resp.StatusCode, parsed
}

func errCode(body map[string]interface{}) string {
	code, _ := body["code"].(string)
	return code
}
