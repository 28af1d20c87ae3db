package controller

import (
	"fmt"
	"testing"

	"lenslink_backend/internal/model"
	"lenslink_backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDashboardStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	client := testutil.TestUser(t, db, model.RoleClient)
	open := testutil.TestRequest(t, db, client.ID)
	testutil.TestRequest(t, db, client.ID, func(r *model.ServiceRequest) {
		r.Slug = "closed-one"
		r.Status = model.RequestStatusClosed
	})

	c1 := testutil.TestUser(t, db, model.RoleCreative)
	c2 := testutil.TestUser(t, db, model.RoleCreative)
	testutil.TestProposal(t, db, open, c1.ID)
	testutil.TestProposal(t, db, open, c2.ID, func(p *model.Proposal) {
		p.Status = model.ProposalStatusAccepted
	})

	app := setupApp(client)
	status, body := doJSON(t, app, fiber.MethodGet, "/api/dashboard/stats", nil)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2.0, body["total_requests"])
	assert.Equal(t, 2.0, body["proposals_received"])
	assert.Equal(t, 1.0, body["accepted_proposals"])
}

func TestCreativeDashboardStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	client := testutil.TestUser(t, db, model.RoleClient)
	creative := testutil.TestUser(t, db, model.RoleCreative)

	for i := 0; i < 3; i++ {
		r := testutil.TestRequest(t, db, client.ID, func(r *model.ServiceRequest) {
			r.Slug = fmt.Sprintf("stats-%d", i)
		})
		testutil.TestProposal(t, db, r, creative.ID, func(p *model.Proposal) {
			if i == 0 {
				p.Status = model.ProposalStatusAccepted
			}
			if i == 1 {
				p.Status = model.ProposalStatusRejected
			}
		})
	}

	app := setupApp(creative)
	status, body := doJSON(t, app, fiber.MethodGet, "/api/dashboard/stats", nil)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 3.0, body["total_proposals"])
	assert.Equal(t, 1.0, body["pending_proposals"])
	assert.Equal(t, 0.5, body["acceptance_rate"])
	assert.Equal(t, 3.0, body["monthly_used"])
	// Free plan limiti
	assert.Equal(t, 10.0, body["monthly_limit"])
}
