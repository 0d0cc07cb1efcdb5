package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/GodwinAdu/retail-pos-sub000/internal/policy"
	"github.com/GodwinAdu/retail-pos-sub000/internal/pos"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

// respondError maps engine and store errors onto HTTP statuses. Every
// typed error keeps its message; only unexpected errors are hidden behind
// a 500.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *pos.StockError

	switch {
	case errors.Is(err, pos.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"on_hand":    stockErr.OnHand,
		})
	case errors.Is(err, store.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pos.ErrInsufficientPayment):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pos.ErrPolicyViolation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pos.ErrIllegalTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, policy.ErrSubscriptionBlocked):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, policy.ErrBranchAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pos.ErrBranchNotFound),
		errors.Is(err, pos.ErrProductNotFound),
		errors.Is(err, pos.ErrCustomerNotFound),
		errors.Is(err, pos.ErrSaleNotFound),
		errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
