package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func openRequest() *ServiceRequest {
	return &ServiceRequest{
		ClientID:    1,
		Title:       "Wedding shoot",
		ServiceType: ServiceWedding,
		Status:      RequestStatusOpen,
	}
}

func TestAppendSummaryKeepsCountInSync(t *testing.T) {
	r := openRequest()

	r.AppendSummary(10, 100)
	r.AppendSummary(11, 101)

	assert.Equal(t, 2, r.ProposalCount)
	assert.Len(t, r.ProposalSummaries, 2)
	assert.Equal(t, RequestStatusOpen, r.Status)
	assert.Equal(t, ProposalStatusPending, r.ProposalSummaries[0].Status)
}

func TestAppendSummaryMovesToReviewingAtCap(t *testing.T) {
	r := openRequest()

	for i := uint(0); i < MaxProposalsPerRequest; i++ {
		r.AppendSummary(10+i, 100+i)
	}

	assert.Equal(t, MaxProposalsPerRequest, r.ProposalCount)
	assert.Equal(t, RequestStatusReviewing, r.Status)
}

func TestResolveSummaryAcceptClosesRequest(t *testing.T) {
	r := openRequest()
	r.AppendSummary(10, 100)
	r.AppendSummary(11, 101)

	ok := r.ResolveSummary(100, ProposalStatusAccepted)

	assert.True(t, ok)
	assert.Equal(t, RequestStatusClosed, r.Status)
	assert.True(t, r.HasAcceptedSummary())
}

func TestResolveSummaryUnknownProposal(t *testing.T) {
	r := openRequest()
	r.AppendSummary(10, 100)

	assert.False(t, r.ResolveSummary(999, ProposalStatusRejected))
	assert.Equal(t, RequestStatusOpen, r.Status)
}

func TestAutoReopenWhenAllRejectedWithoutAcceptance(t *testing.T) {
	r := openRequest()
	r.AppendSummary(10, 100)
	r.AppendSummary(11, 101)

	// Müşteri talebi elle kapattıktan sonra kalan teklifleri reddediyor
	r.Status = RequestStatusClosed

	r.ResolveSummary(100, ProposalStatusRejected)
	assert.Equal(t, RequestStatusClosed, r.Status)
	assert.False(t, r.AutoReopened)

	r.ResolveSummary(101, ProposalStatusRejected)
	assert.Equal(t, RequestStatusOpen, r.Status)
	assert.True(t, r.AutoReopened)
}

func TestAcceptanceBlocksAutoReopen(t *testing.T) {
	r := openRequest()
	r.AppendSummary(10, 100)
	r.AppendSummary(11, 101)

	r.ResolveSummary(100, ProposalStatusAccepted)
	assert.Equal(t, RequestStatusClosed, r.Status)

	// Kabul varken kalan tekliflerin reddi talebi tekrar açmaz
	r.ResolveSummary(101, ProposalStatusRejected)
	assert.Equal(t, RequestStatusClosed, r.Status)
	assert.False(t, r.AutoReopened)
}

func TestWithdrawnSummaryDoesNotTriggerReopen(t *testing.T) {
	r := openRequest()
	r.AppendSummary(10, 100)
	r.Status = RequestStatusClosed

	// Tek özet withdrawn olursa liste rejected sayılmaz
	r.ResolveSummary(100, ProposalStatusWithdrawn)
	assert.Equal(t, RequestStatusClosed, r.Status)
}

func TestRemoveSummaryFreesSlot(t *testing.T) {
	r := openRequest()
	for i := uint(0); i < MaxProposalsPerRequest; i++ {
		r.AppendSummary(10+i, 100+i)
	}
	assert.Equal(t, RequestStatusReviewing, r.Status)

	ok := r.RemoveSummary(102)

	assert.True(t, ok)
	assert.Equal(t, MaxProposalsPerRequest-1, r.ProposalCount)
	assert.Equal(t, RequestStatusOpen, r.Status)
	assert.False(t, r.HasProposalFrom(12))
	assert.True(t, r.HasProposalFrom(11))
}

func TestRemoveSummaryUnknownProposal(t *testing.T) {
	r := openRequest()
	r.AppendSummary(10, 100)

	assert.False(t, r.RemoveSummary(999))
	assert.Equal(t, 1, r.ProposalCount)
}

func TestIsActive(t *testing.T) {
	r := openRequest()
	assert.True(t, r.IsActive())

	r.Status = RequestStatusReviewing
	assert.True(t, r.IsActive())

	r.Status = RequestStatusClosed
	assert.False(t, r.IsActive())

	r.Status = RequestStatusCancelled
	assert.False(t, r.IsActive())
}

func TestPublicViewHidesBudget(t *testing.T) {
	r := openRequest()
	r.BudgetMin = 100000
	r.BudgetMax = 250000
	r.Currency = CurrencyNGN

	hidden := r.PublicView(false)
	_, hasMin := hidden["budget_min"]
	_, hasMax := hidden["budget_max"]
	_, hasCurrency := hidden["currency"]
	assert.False(t, hasMin)
	assert.False(t, hasMax)
	assert.False(t, hasCurrency)

	visible := r.PublicView(true)
	assert.Equal(t, 100000.0, visible["budget_min"])
	assert.Equal(t, 250000.0, visible["budget_max"])
	assert.Equal(t, CurrencyNGN, visible["currency"])
}
