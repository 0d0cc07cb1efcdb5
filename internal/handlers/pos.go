package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/middleware"
	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/pos"
)

// CheckoutRequest is the wire shape of a checkout call. Any totals the
// client may have computed are deliberately absent: the engine reprices
// the cart from the catalog.
type CheckoutRequest struct {
	BranchID       string               `json:"branch_id"`
	Items          []pos.CartLine       `json:"items"`
	TaxType        models.TaxMode       `json:"tax_type"`
	TaxValue       decimal.Decimal      `json:"tax_value"`
	DiscountType   models.DiscountMode  `json:"discount_type"`
	DiscountValue  decimal.Decimal      `json:"discount_value"`
	CustomerID     *string              `json:"customer_id,omitempty"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	AmountReceived *decimal.Decimal     `json:"amount_received,omitempty"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

// Checkout handles POST /pos/checkout
func Checkout(engine *pos.Engine, cfgs pos.ConfigProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var req CheckoutRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.TaxType == "" {
			req.TaxType = models.TaxPercentage
		}
		if req.DiscountType == "" {
			req.DiscountType = models.DiscountFixed
		}

		receipt, err := engine.Checkout(c.Context(), identity, cfgs.ConfigFor(req.BranchID), pos.CheckoutRequest{
			BranchID:       req.BranchID,
			Lines:          req.Items,
			TaxMode:        req.TaxType,
			TaxValue:       req.TaxValue,
			DiscountMode:   req.DiscountType,
			DiscountValue:  req.DiscountValue,
			CustomerID:     req.CustomerID,
			PaymentMethod:  req.PaymentMethod,
			AmountReceived: req.AmountReceived,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(receipt)
	}
}

// RefundRequest optionally narrows a refund to part of the sale total.
type RefundRequest struct {
	BranchID string           `json:"branch_id"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

// RefundSale handles POST /pos/sales/:id/refund
func RefundSale(engine *pos.Engine, cfgs pos.ConfigProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var req RefundRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		saleID := c.Params("id")
		if err := engine.Refund(c.Context(), identity, cfgs.ConfigFor(req.BranchID), req.BranchID, saleID, req.Amount); err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}

// StatusRequest names the target status of a transition.
type StatusRequest struct {
	BranchID string            `json:"branch_id"`
	Status   models.SaleStatus `json:"status"`
}

// SetSaleStatus handles PATCH /pos/sales/:id/status
func SetSaleStatus(engine *pos.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		var req StatusRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		saleID := c.Params("id")
		if err := engine.SetStatus(c.Context(), identity, req.BranchID, saleID, req.Status); err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"ok": true})
	}
}

// GetSale handles GET /pos/sales/:id?branch_id=...
func GetSale(engine *pos.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		sale, err := engine.GetSale(c.Context(), identity, c.Query("branch_id"), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sale)
	}
}
