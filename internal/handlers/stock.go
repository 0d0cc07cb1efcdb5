package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GodwinAdu/retail-pos-sub000/internal/middleware"
	"github.com/GodwinAdu/retail-pos-sub000/internal/pos"
)

// StockMovementRequest is a manual correction: goods received or a
// write-off. Quantity is always positive; the route decides direction.
type StockMovementRequest struct {
	BranchID  string `json:"branch_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StockIn handles POST /inventory/stock-in
func StockIn(engine *pos.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var req StockMovementRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		product, err := engine.ReceiveStock(c.Context(), identity, req.BranchID, req.ProductID, req.Quantity)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(product)
	}
}

// StockWriteOff handles POST /inventory/write-off
func StockWriteOff(engine *pos.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var req StockMovementRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		product, err := engine.WriteOffStock(c.Context(), identity, req.BranchID, req.ProductID, req.Quantity)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(product)
	}
}

// StockAlerts handles GET /inventory/alerts?branch_id=...
func StockAlerts(engine *pos.Engine, cfgs pos.ConfigProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		branchID := c.Query("branch_id")
		alerts, err := engine.StockAlerts(c.Context(), identity, cfgs.ConfigFor(branchID), branchID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(alerts)
	}
}
