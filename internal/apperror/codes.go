package apperror

import "github.com/gofiber/fiber/v2"

// Hata türleri JSON gövdesinde "code" alanı olarak döner; mesajlar serbest,
// kodlar sabittir.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeNotAuthorized      = "NOT_AUTHORIZED"
	CodeInvalidState       = "INVALID_STATE"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeProposalCapReached = "PROPOSAL_CAP_REACHED"
	CodeDuplicateProposal  = "DUPLICATE_PROPOSAL"
	CodeRequestNotOpen     = "REQUEST_NOT_OPEN"
	CodeProfileRequired    = "PROFILE_REQUIRED"
	CodeHasProposals       = "HAS_PROPOSALS"
	CodeAlreadySubscribed  = "ALREADY_SUBSCRIBED"
	CodeInvalidUpgrade     = "INVALID_UPGRADE"
	CodeInvalidPlan        = "INVALID_PLAN"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
)

func JSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
