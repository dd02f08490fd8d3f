package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"vendra/internal/services/ledger"
	"vendra/internal/utils/response"
)

// EarningsHandler is the entry point for the order/payment subsystem. It
// receives the final commission-adjusted figure; the ledger never computes
// commission itself.
type EarningsHandler struct {
	ledgerService ledger.Service
}

func NewEarningsHandler(ledgerService ledger.Service) *EarningsHandler {
	return &EarningsHandler{
		ledgerService: ledgerService,
	}
}

type earningInput struct {
	VendorID    uint            `json:"vendor_id"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     *uint           `json:"order_id"`
	Hold        bool            `json:"hold"`
	Description string          `json:"description"`
}

// RecordEarning credits a confirmed order's earning. With hold set the
// amount lands in the pending balance until released after the return
// window.
func (h *EarningsHandler) RecordEarning(c *fiber.Ctx) error {
	var input earningInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.VendorID == 0 {
		return response.BadRequest(c, "vendor_id is required")
	}

	description := input.Description
	if description == "" {
		description = "order earning"
	}

	var err error
	var txn interface{}
	if input.Hold {
		txn, err = h.ledgerService.CreditPending(c.Context(), input.VendorID, input.Amount, input.OrderID, description)
	} else {
		txn, err = h.ledgerService.Credit(c.Context(), input.VendorID, input.Amount, input.OrderID, description)
	}
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "earning recorded", fiber.Map{"transaction": txn})
}

// ReleaseEarning moves a held earning into the spendable balance.
func (h *EarningsHandler) ReleaseEarning(c *fiber.Ctx) error {
	var input earningInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.VendorID == 0 {
		return response.BadRequest(c, "vendor_id is required")
	}

	description := input.Description
	if description == "" {
		description = "earning released"
	}

	txn, err := h.ledgerService.ReleasePending(c.Context(), input.VendorID, input.Amount, input.OrderID, description)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "earning released", fiber.Map{"transaction": txn})
}
