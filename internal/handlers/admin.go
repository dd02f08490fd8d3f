package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"vendra/internal/repositories"
	"vendra/internal/services/ledger"
	"vendra/internal/services/payout"
	"vendra/internal/utils/pagination"
	"vendra/internal/utils/response"
)

type AdminHandler struct {
	ledgerService ledger.Service
	payoutService payout.Service
}

func NewAdminHandler(ledgerService ledger.Service, payoutService payout.Service) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
		payoutService: payoutService,
	}
}

func (h *AdminHandler) ListWallets(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	vendorID, _ := strconv.Atoi(c.Query("vendor_id", "0"))

	wallets, total, err := h.ledgerService.ListWallets(c.Context(), repositories.WalletFilter{
		VendorID:      uint(vendorID),
		IncludeHidden: c.QueryBool("include_hidden"),
		Offset:        p.Offset,
		Limit:         p.Limit,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	p.Total = total

	return c.JSON(pagination.Response(p, wallets))
}

func (h *AdminHandler) ListTransactions(c *fiber.Ctx) error {
	vendorID, _ := strconv.Atoi(c.Query("vendor_id", "0"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := repositories.TransactionFilter{
		VendorID: uint(vendorID),
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Cursor:   c.Query("cursor"),
		Limit:    limit,
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return response.BadRequest(c, "invalid from timestamp")
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return response.BadRequest(c, "invalid to timestamp")
		}
		filter.To = &t
	}

	txns, next, err := h.ledgerService.ListTransactions(c.Context(), filter)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "transactions", fiber.Map{
		"transactions": txns,
		"next_cursor":  next,
	})
}

func (h *AdminHandler) ListPayouts(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	vendorID, _ := strconv.Atoi(c.Query("vendor_id", "0"))

	payouts, total, err := h.payoutService.List(c.Context(), repositories.PayoutFilter{
		VendorID: uint(vendorID),
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

// Adjust applies a signed manual correction. The acting admin is recorded
// in the transaction description for the audit trail.
func (h *AdminHandler) Adjust(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	vendorID, err := c.ParamsInt("vendorID")
	if err != nil || vendorID <= 0 {
		return response.BadRequest(c, "invalid vendor id")
	}

	var input struct {
		Amount          decimal.Decimal `json:"amount"`
		Description     string          `json:"description"`
		ReferenceNumber string          `json:"reference_number"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	description := fmt.Sprintf("%s (by %s)", input.Description, claims.Email)
	txn, err := h.ledgerService.Adjust(c.Context(), uint(vendorID), input.Amount, description, input.ReferenceNumber)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "adjustment applied", fiber.Map{"transaction": txn})
}

// Reconcile refolds the vendor's transaction log and reports whether it
// matches the cached balances.
func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	vendorID, err := c.ParamsInt("vendorID")
	if err != nil || vendorID <= 0 {
		return response.BadRequest(c, "invalid vendor id")
	}

	consistent, err := h.ledgerService.Reconcile(c.Context(), uint(vendorID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "reconciliation finished", fiber.Map{"consistent": consistent})
}

func (h *AdminHandler) ReverseTransaction(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	vendorID, err := c.ParamsInt("vendorID")
	if err != nil || vendorID <= 0 {
		return response.BadRequest(c, "invalid vendor id")
	}
	txnID, err := c.ParamsInt("txnID")
	if err != nil || txnID <= 0 {
		return response.BadRequest(c, "invalid transaction id")
	}

	var input struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	description := fmt.Sprintf("%s (by %s)", input.Description, claims.Email)
	txn, err := h.ledgerService.Reverse(c.Context(), uint(vendorID), uint(txnID), description)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "transaction reversed", fiber.Map{"transaction": txn})
}

// SetWalletVisibility toggles the admin soft-hide flag. Purely a query
// layer concern; hidden wallets still settle normally.
func (h *AdminHandler) SetWalletVisibility(c *fiber.Ctx) error {
	vendorID, err := c.ParamsInt("vendorID")
	if err != nil || vendorID <= 0 {
		return response.BadRequest(c, "invalid vendor id")
	}

	var input struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	if err := h.ledgerService.SetWalletHidden(c.Context(), uint(vendorID), input.Hidden); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "wallet visibility updated", fiber.Map{"hidden": input.Hidden})
}

func (h *AdminHandler) ApprovePayout(c *fiber.Ctx) error {
	return h.decidePayout(c, true)
}

func (h *AdminHandler) RejectPayout(c *fiber.Ctx) error {
	return h.decidePayout(c, false)
}

func (h *AdminHandler) decidePayout(c *fiber.Ctx, approve bool) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid payout id")
	}

	var input struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request format")
	}

	notes := fmt.Sprintf("%s (by %s)", input.Notes, claims.Email)
	var request interface{}
	if approve {
		request, err = h.payoutService.Approve(c.Context(), uint(id), notes)
	} else {
		request, err = h.payoutService.Reject(c.Context(), uint(id), notes)
	}
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "payout updated", fiber.Map{"payout": request})
}

// CompletePayout executes the transfer: debit and status flip commit
// together. A failure reports the specific reason; insufficient funds
// leaves the request processing for the operator to retry or reject.
func (h *AdminHandler) CompletePayout(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid payout id")
	}

	var input struct {
		ReferenceNumber string `json:"reference_number"`
	}
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request format")
	}

	request, err := h.payoutService.Complete(c.Context(), uint(id), input.ReferenceNumber)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "payout completed", fiber.Map{"payout": request})
}
