package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lenslink_backend/internal/middleware"
	"lenslink_backend/internal/model"
	"lenslink_backend/internal/testutil"
	"lenslink_backend/pkg/paystack"
	"lenslink_backend/pkg/subscription"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPaymentGateway paystackClient'ı yerel bir sunucuya yönlendirir.
func stubPaymentGateway(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(handler)
	previous := paystackClient
	paystackClient = paystack.NewClientWithBaseURL("sk_test_stub", srv.URL)
	t.Cleanup(func() {
		paystackClient = previous
		srv.Close()
	})
}

func TestCreateFreeSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)

	app := setupApp(user)
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/free", nil)
	require.Equal(t, fiber.StatusCreated, status)

	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, subscription.FreePlan, sub.Plan)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.Nil(t, sub.EndDate)
	assert.Equal(t, 10, sub.Features.ProposalsPerMonth)
}

func TestCreateFreeSubscriptionCancelsPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative, testutil.WithPlan("basic"))
	endDate := time.Now().AddDate(0, 1, 0)
	paid := testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.BasicPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   &endDate,
	})

	app := setupApp(user)
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/free", nil)
	require.Equal(t, fiber.StatusCreated, status)

	var old model.Subscription
	require.NoError(t, db.First(&old, paid.ID).Error)
	assert.Equal(t, model.SubscriptionStatusCancelled, old.Status)

	var refreshed model.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.Equal(t, "free", refreshed.SubscriptionPlan)
}

func TestCreatePaidSubscriptionValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)
	app := setupApp(user)

	// Free plan ödeme akışından alınamaz
	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions", fiber.Map{
		"plan":   "free",
		"period": "monthly",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PLAN", errCode(body))

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/subscriptions", fiber.Map{
		"plan":   "basic",
		"period": "weekly",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreatePaidSubscriptionWritesPlaceholderFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	var placeholderSeen bool
	stubPaymentGateway(t, func(w http.ResponseWriter, r *http.Request) {
		// Sağlayıcıya gidildiği anda pending kayıt zaten yazılmış olmalı
		var count int64
		db.Model(&model.Subscription{}).
			Where("status = ? AND payment_status = ?", model.SubscriptionStatusPending, model.PaymentStatusPending).
			Count(&count)
		placeholderSeen = count == 1

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.example.com/tx-1","access_code":"ac_1","reference":"ignored"}}`))
	})

	user := testutil.TestUser(t, db, model.RoleCreative)
	app := setupApp(user)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions", fiber.Map{
		"plan":   "basic",
		"period": "monthly",
	})

	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, placeholderSeen)
	assert.Equal(t, "https://checkout.example.com/tx-1", body["redirect_url"])

	reference, _ := body["reference"].(string)
	require.NotEmpty(t, reference)

	var sub model.Subscription
	require.NoError(t, db.Where("payment_reference = ?", reference).First(&sub).Error)
	assert.Equal(t, model.SubscriptionStatusPending, sub.Status)
	assert.Equal(t, model.PaymentStatusPending, sub.Payment.Status)
	assert.Equal(t, subscription.GetPlanPrice(subscription.BasicPlan, subscription.PeriodMonthly), sub.Payment.Amount)
}

func TestCreatePaidSubscriptionProviderFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	stubPaymentGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	})

	user := testutil.TestUser(t, db, model.RoleCreative)
	app := setupApp(user)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/subscriptions", fiber.Map{
		"plan":   "pro",
		"period": "monthly",
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)

	// Placeholder kalır ama ödemesi iptal işaretlenir
	var sub model.Subscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.SubscriptionStatusPending, sub.Status)
	assert.Equal(t, model.PaymentStatusCancelled, sub.Payment.Status)
}

func TestCreatePaidSubscriptionAlreadySubscribed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative, testutil.WithPlan("basic"))
	endDate := time.Now().AddDate(0, 1, 0)
	testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.BasicPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   &endDate,
	})

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions", fiber.Map{
		"plan":   "pro",
		"period": "monthly",
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "ALREADY_SUBSCRIBED", errCode(body))
}

func TestCancelSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	endDate := time.Now().AddDate(0, 0, 20)
	user := testutil.TestUser(t, db, model.RoleCreative, func(u *model.User) {
		u.SubscriptionPlan = "basic"
		u.SubscriptionExpiry = &endDate
	})
	sub := testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.BasicPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now().AddDate(0, 0, -10),
		EndDate:   &endDate,
		AutoRenew: true,
	})

	app := setupApp(user)
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/cancel", nil)
	require.Equal(t, fiber.StatusOK, status)

	var cancelled model.Subscription
	require.NoError(t, db.First(&cancelled, sub.ID).Error)
	assert.Equal(t, model.SubscriptionStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.AutoRenew)

	// Özellikler dönem sonuna kadar korunur
	var refreshed model.User
	require.NoError(t, db.First(&refreshed, user.ID).Error)
	assert.Equal(t, string(model.SubscriptionStatusCancelled), refreshed.SubscriptionStatus)
	assert.Equal(t, subscription.BasicPlan, middleware.PlanForUserRecord(&refreshed))
}

func TestCancelSubscriptionNoneActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/cancel", nil)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(body))
}

func TestCancelFreeSubscriptionRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)
	testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.FreePlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
	})

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/cancel", nil)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PLAN", errCode(body))
}

func TestUpgradeRequiresActiveSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/upgrade", fiber.Map{
		"plan": "pro",
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(body))
}

func TestUpgradeRejectsDowngradeAndSamePlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative, testutil.WithPlan("pro"))
	endDate := time.Now().AddDate(0, 1, 0)
	testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.ProPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   &endDate,
	})

	app := setupApp(user)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/upgrade", fiber.Map{
		"plan": "basic",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_UPGRADE", errCode(body))

	status, body = doJSON(t, app, fiber.MethodPost, "/api/subscriptions/upgrade", fiber.Map{
		"plan": "pro",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_UPGRADE", errCode(body))

	status, body = doJSON(t, app, fiber.MethodPost, "/api/subscriptions/upgrade", fiber.Map{
		"plan": "platinum",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PLAN", errCode(body))
}

func TestUpgradeCreatesPendingWithProratedAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	stubPaymentGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.example.com/up-1","access_code":"ac_2","reference":"ignored"}}`))
	})

	user := testutil.TestUser(t, db, model.RoleCreative, testutil.WithPlan("basic"))
	endDate := time.Now().AddDate(0, 1, 0)
	current := testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.BasicPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now().AddDate(0, 0, -10),
		EndDate:   &endDate,
	})

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodPost, "/api/subscriptions/upgrade", fiber.Map{
		"plan": "pro",
	})
	require.Equal(t, fiber.StatusOK, status)

	// 10 gün kullanılmış basic: kalan 20/30 gün fiyattan düşülür
	unused := int64(500_000) * 20 / 30
	expectedDue := int64(1_500_000) - unused
	assert.Equal(t, float64(expectedDue), body["amount_due"])

	reference, _ := body["reference"].(string)
	require.NotEmpty(t, reference)

	var pending model.Subscription
	require.NoError(t, db.Where("payment_reference = ?", reference).First(&pending).Error)
	assert.Equal(t, model.SubscriptionStatusPending, pending.Status)
	assert.Equal(t, subscription.ProPlan, pending.Plan)
	assert.Equal(t, expectedDue, pending.Payment.Amount)

	// Webhook gelene kadar mevcut abonelik dokunulmaz
	var untouched model.Subscription
	require.NoError(t, db.First(&untouched, current.ID).Error)
	assert.Equal(t, model.SubscriptionStatusActive, untouched.Status)
	assert.Equal(t, subscription.BasicPlan, untouched.Plan)
}

func TestGetMySubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)
	endDate := time.Now().AddDate(0, 1, 0)
	testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.BasicPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now(),
		EndDate:   &endDate,
	})

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodGet, "/api/subscriptions/my", nil)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "basic", body["plan"])
}

func TestGetMySubscriptionExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db, model.RoleCreative)
	endDate := time.Now().Add(-time.Hour)
	testutil.TestSubscription(t, db, &model.Subscription{
		UserID:    user.ID,
		Plan:      subscription.BasicPlan,
		Period:    subscription.PeriodMonthly,
		Status:    model.SubscriptionStatusActive,
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   &endDate,
	})

	app := setupApp(user)
	status, body := doJSON(t, app, fiber.MethodGet, "/api/subscriptions/my", nil)

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(body))
}
