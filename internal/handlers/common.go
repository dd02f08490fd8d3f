// Package handlers exposes the ledger over HTTP. Handlers validate input
// and map domain errors to statuses; all invariants live in the services.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vendra/internal/models"
)

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
