package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"vendra/internal/models"
	"vendra/internal/repositories"
	"vendra/internal/services/payout"
	"vendra/internal/utils/pagination"
	"vendra/internal/utils/response"
)

type PayoutHandler struct {
	payoutService payout.Service
}

func NewPayoutHandler(payoutService payout.Service) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

// CreatePayout records a withdrawal request. The balance is checked at
// completion time, not here.
func (h *PayoutHandler) CreatePayout(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount      decimal.Decimal `json:"amount"`
		BankDetails models.JSON     `json:"bank_details"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	request, err := h.payoutService.Create(c.Context(), claims.UserID, input.Amount, input.BankDetails)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "payout requested", fiber.Map{"payout": request})
}

func (h *PayoutHandler) ListPayouts(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	payouts, total, err := h.payoutService.List(c.Context(), repositories.PayoutFilter{
		VendorID: claims.UserID,
		Status:   c.Query("status"),
		Offset:   p.Offset,
		Limit:    p.Limit,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	p.Total = total

	return c.JSON(pagination.Response(p, payouts))
}

func (h *PayoutHandler) GetPayout(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid payout id")
	}

	request, err := h.payoutService.Get(c.Context(), uint(id))
	if err != nil {
		return response.DomainError(c, err)
	}
	if request.VendorID != claims.UserID && !claims.IsAdmin() {
		return response.Error(c, fiber.StatusForbidden, "not your payout request")
	}

	return response.Success(c, "payout", fiber.Map{"payout": request})
}
