package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"vendra/internal/repositories"
	"vendra/internal/services/ledger"
	"vendra/internal/utils/response"
)

type WalletHandler struct {
	ledgerService ledger.Service
}

func NewWalletHandler(ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
	}
}

// GetWallet returns the calling vendor's wallet.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	wallet, err := h.ledgerService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "wallet", fiber.Map{"wallet": wallet})
}

// ListTransactions pages the calling vendor's ledger history, newest
// first, via an opaque cursor.
func (h *WalletHandler) ListTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	txns, next, err := h.ledgerService.ListTransactions(c.Context(), repositories.TransactionFilter{
		VendorID: claims.UserID,
		Type:     c.Query("type"),
		Cursor:   c.Query("cursor"),
		Limit:    limit,
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "transactions", fiber.Map{
		"transactions": txns,
		"next_cursor":  next,
	})
}
