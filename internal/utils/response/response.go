package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	errs "vendra/internal/errors"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

// DomainError maps the ledger error taxonomy onto HTTP statuses, keeping
// the machine-readable code in the body so callers can distinguish, say,
// insufficient funds from an already-completed payout.
func DomainError(c *fiber.Ctx, err error) error {
	var domainErr *errs.DomainError
	if !errors.As(err, &domainErr) {
		return ServerError(c, "internal error")
	}

	status := fiber.StatusBadRequest
	switch domainErr.Code {
	case errs.ErrWalletNotFound.Code, errs.ErrPayoutNotFound.Code, errs.ErrTransactionNotFound.Code:
		status = fiber.StatusNotFound
	case errs.ErrInsufficientFunds.Code:
		status = fiber.StatusUnprocessableEntity
	case errs.ErrInvalidStateTransition.Code, errs.ErrConcurrentModification.Code:
		status = fiber.StatusConflict
	case errs.ErrStorage.Code:
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"error": domainErr.Message,
		"code":  domainErr.Code,
	})
}
