package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/GodwinAdu/retail-pos-sub000/internal/middleware"
	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

type AuthHandler struct {
	Repo store.Repository
}

func NewAuthHandler(repo store.Repository) *AuthHandler {
	return &AuthHandler{Repo: repo}
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.Repo.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		log.Printf("Database error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if err := middleware.CheckPassword(req.Password, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateJWT(user)
	if err != nil {
		log.Printf("Error generating JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error generating authentication token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"role":  user.Role,
	})
}

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Username     string      `json:"username" validate:"required"`
	Password     string      `json:"password" validate:"required,min=6"`
	Role         models.Role `json:"role" validate:"required,oneof=admin manager cashier"`
	BranchAccess []string    `json:"branch_access"`
}

// Register handles user registration (for admin only)
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	switch req.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleCashier:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown role",
		})
	}

	if _, err := h.Repo.GetUserByUsername(c.Context(), req.Username); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username already exists",
		})
	}

	hashedPassword, err := middleware.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error processing request",
		})
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Password:     hashedPassword,
		Role:         req.Role,
		BranchAccess: req.BranchAccess,
	}

	if err := h.Repo.CreateUser(c.Context(), &user); err != nil {
		log.Printf("Error creating user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error creating user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user": fiber.Map{
			"id":            user.ID,
			"username":      user.Username,
			"role":          user.Role,
			"branch_access": user.BranchAccess,
		},
	})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	identity, err := middleware.IdentityFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := h.Repo.GetUser(c.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		log.Printf("Database error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	user.Password = ""
	return c.JSON(user)
}
