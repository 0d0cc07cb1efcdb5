package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

// CustomerRequest defines the structure for creating/updating a customer.
// Loyalty balances are absent on purpose: they change only through the
// checkout/refund accrual path.
type CustomerRequest struct {
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
}

// GetCustomers handles fetching all customers of a store
func GetCustomers(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customers, err := repo.ListCustomers(c.Context(), c.Query("store_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(customers)
	}
}

// GetCustomer handles fetching a single customer by ID
func GetCustomer(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customer, err := repo.GetCustomer(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(customer)
	}
}

// CreateCustomer handles creating a new customer
func CreateCustomer(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CustomerRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.StoreID == "" || req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "store_id and name are required"})
		}

		customer := models.Customer{
			ID:      uuid.New().String(),
			StoreID: req.StoreID,
			Name:    req.Name,
			Phone:   req.Phone,
		}
		if err := repo.CreateCustomer(c.Context(), &customer); err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(customer)
	}
}

// UpdateCustomer handles updating a customer's contact details
func UpdateCustomer(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CustomerRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		existing, err := repo.GetCustomer(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}

		existing.Name = req.Name
		existing.Phone = req.Phone

		if err := repo.UpdateCustomer(c.Context(), existing); err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"message": "Customer updated successfully"})
	}
}

// DeleteCustomer handles deleting a customer
func DeleteCustomer(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := repo.DeleteCustomer(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Customer deleted successfully"})
	}
}
