package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/GodwinAdu/retail-pos-sub000/internal/middleware"
	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

// UserResponse defines the structure for user data sent to the client
type UserResponse struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Role         models.Role `json:"role"`
	BranchAccess []string    `json:"branch_access"`
}

// UpdateUserRequest defines the structure for updating a user
type UpdateUserRequest struct {
	Username     string      `json:"username" validate:"required"`
	Password     string      `json:"password,omitempty"` // Password is optional
	Role         models.Role `json:"role" validate:"required,oneof=admin manager cashier"`
	BranchAccess []string    `json:"branch_access"`
}

// GetUsers handles fetching all users
func GetUsers(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := repo.ListUsers(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
		}

		// Transform users to UserResponse to avoid sending password hash
		var response []UserResponse
		for _, user := range users {
			response = append(response, UserResponse{
				ID:           user.ID,
				Username:     user.Username,
				Role:         user.Role,
				BranchAccess: user.BranchAccess,
			})
		}

		return c.JSON(response)
	}
}

// UpdateUser handles updating a user's details
func UpdateUser(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req UpdateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		user, err := repo.GetUser(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}

		user.Username = req.Username
		user.Role = req.Role
		user.BranchAccess = req.BranchAccess

		// If a new password is provided, hash and update it
		if req.Password != "" {
			hashedPassword, err := middleware.HashPassword(req.Password)
			if err != nil {
				log.Printf("Error hashing password: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing password"})
			}
			user.Password = hashedPassword
		}

		if err := repo.UpdateUser(c.Context(), user); err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{"message": "User updated successfully"})
	}
}

// DeleteUser handles deleting a user
func DeleteUser(repo store.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := repo.DeleteUser(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "User deleted successfully"})
	}
}
