package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

// ProductRequest defines the structure for creating/updating a product
type ProductRequest struct {
	BranchID     string          `json:"branch_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	StockOnHand  int             `json:"stock_on_hand"`
	MinStock     int             `json:"min_stock"`
	MaxStock     int             `json:"max_stock"`
	IsPerishable bool            `json:"is_perishable"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

func (r ProductRequest) validate() string {
	switch {
	case r.BranchID == "":
		return "branch_id is required"
	case r.Name == "":
		return "name is required"
	case r.UnitPrice.IsNegative():
		return "unit_price must not be negative"
	case r.StockOnHand < 0:
		return "stock_on_hand must not be negative"
	case r.MinStock < 0 || r.MaxStock < 0:
		return "stock thresholds must not be negative"
	default:
		return ""
	}
}

// GetProducts handles fetching all products of a branch
func GetProducts(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := repo.ListProducts(c.Context(), c.Query("branch_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(products)
	}
}

// GetProduct handles fetching a single product by ID
func GetProduct(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		product, err := repo.GetProduct(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(product)
	}
}

// CreateProduct handles creating a new product
func CreateProduct(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ProductRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if msg := req.validate(); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		// The branch must exist; products are always branch-scoped.
		if _, err := repo.GetBranch(c.Context(), req.BranchID); err != nil {
			return respondError(c, err)
		}

		product := models.Product{
			ID:           uuid.New().String(),
			BranchID:     req.BranchID,
			Name:         req.Name,
			UnitPrice:    req.UnitPrice.Round(2),
			StockOnHand:  req.StockOnHand,
			MinStock:     req.MinStock,
			MaxStock:     req.MaxStock,
			IsPerishable: req.IsPerishable,
			BatchNumber:  req.BatchNumber,
			ExpiryDate:   req.ExpiryDate,
		}
		if err := repo.CreateProduct(c.Context(), &product); err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// UpdateProduct handles updating a product's catalog fields. Stock is not
// writable here; on-hand counts change only through the stock endpoints.
func UpdateProduct(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ProductRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		existing, err := repo.GetProduct(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}

		existing.Name = req.Name
		existing.UnitPrice = req.UnitPrice.Round(2)
		existing.MinStock = req.MinStock
		existing.MaxStock = req.MaxStock
		existing.IsPerishable = req.IsPerishable
		existing.BatchNumber = req.BatchNumber
		existing.ExpiryDate = req.ExpiryDate

		if err := repo.UpdateProduct(c.Context(), existing); err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"message": "Product updated successfully"})
	}
}

// DeleteProduct handles deleting a product
func DeleteProduct(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := repo.DeleteProduct(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Product deleted successfully"})
	}
}
