package subscription

import "time"

type Plan string
type Period string

const (
	FreePlan  Plan = "free"
	BasicPlan Plan = "basic"
	ProPlan   Plan = "pro"
)

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// PlanLimits bir planın kota ve özellik seti. Tüm limitler buradan okunur,
// başka yerde tekrar edilmez.
type PlanLimits struct {
	ProposalsPerMonth int  `json:"proposals_per_month"`
	ActiveRequests    int  `json:"active_requests"`
	CanSeeBudget      bool `json:"can_see_budget"`
	Priority          bool `json:"priority"`
	VerificationBadge bool `json:"verification_badge"`
}

var PlanFeatures = map[Plan]PlanLimits{
	FreePlan: {
		ProposalsPerMonth: 10,
		ActiveRequests:    3,
		CanSeeBudget:      false,
		Priority:          false,
		VerificationBadge: false,
	},
	BasicPlan: {
		ProposalsPerMonth: 50,
		ActiveRequests:    10,
		CanSeeBudget:      true,
		Priority:          false,
		VerificationBadge: true,
	},
	ProPlan: {
		ProposalsPerMonth: 200,
		ActiveRequests:    30,
		CanSeeBudget:      true,
		Priority:          true,
		VerificationBadge: true,
	},
}

// PlanPrices kobo cinsinden sabit fiyat tablosu. Free plan ücretsiz.
var PlanPrices = map[Plan]map[Period]int64{
	BasicPlan: {
		PeriodMonthly:   500_000,
		PeriodQuarterly: 1_350_000,
		PeriodYearly:    4_800_000,
	},
	ProPlan: {
		PeriodMonthly:   1_500_000,
		PeriodQuarterly: 4_050_000,
		PeriodYearly:    14_400_000,
	},
}

var planRank = map[Plan]int{
	FreePlan:  0,
	BasicPlan: 1,
	ProPlan:   2,
}

func GetPlanLimits(plan Plan) PlanLimits {
	limits, exists := PlanFeatures[plan]
	if !exists {
		return PlanFeatures[FreePlan]
	}
	return limits
}

func IsValidPlan(plan Plan) bool {
	_, ok := planRank[plan]
	return ok
}

func IsValidPeriod(period Period) bool {
	return period == PeriodMonthly || period == PeriodQuarterly || period == PeriodYearly
}

// GetPlanPrice plan+periyot fiyatını döner, free için 0.
func GetPlanPrice(plan Plan, period Period) int64 {
	periods, ok := PlanPrices[plan]
	if !ok {
		return 0
	}
	return periods[period]
}

// IsUpgrade newPlan mevcut plandan kesin olarak yüksek mi (free < basic < pro).
func IsUpgrade(current, newPlan Plan) bool {
	return planRank[newPlan] > planRank[current]
}

// PeriodEnd abonelik bitişini hesaplar: monthly +1 ay, quarterly +3 ay, yearly +1 yıl.
func PeriodEnd(start time.Time, period Period) time.Time {
	switch period {
	case PeriodQuarterly:
		return start.AddDate(0, 3, 0)
	case PeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// PeriodDays proration hesabında kullanılan periyot uzunluğu.
func PeriodDays(period Period) int {
	switch period {
	case PeriodQuarterly:
		return 90
	case PeriodYearly:
		return 365
	default:
		return 30
	}
}
