package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

// BranchRequest defines the structure for creating a branch
type BranchRequest struct {
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
}

// GetBranches handles fetching all branches of a store
func GetBranches(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branches, err := repo.ListBranches(c.Context(), c.Query("store_id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(branches)
	}
}

// CreateBranch handles creating a new branch
func CreateBranch(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req BranchRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.StoreID == "" || req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "store_id and name are required"})
		}

		branch := models.Branch{
			ID:      uuid.New().String(),
			StoreID: req.StoreID,
			Name:    req.Name,
		}
		if err := repo.CreateBranch(c.Context(), &branch); err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(branch)
	}
}
