package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/database"
	"github.com/GodwinAdu/retail-pos-sub000/internal/handlers"
	"github.com/GodwinAdu/retail-pos-sub000/internal/middleware"
	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/policy"
	"github.com/GodwinAdu/retail-pos-sub000/internal/pos"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store/gormdb"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store/memory"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found, using system environment")
	}

	repo := openStore()
	gate := buildGate()
	engine := pos.NewEngine(repo, gate)
	cfgs := pos.StaticConfig{Config: branchConfigFromEnv()}

	app := fiber.New()
	app.Use(logger.New())

	authHandler := handlers.NewAuthHandler(repo)

	api := app.Group("/api/v1")

	// === PUBLIC ROUTES ===
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "Running", "message": "API Ready"})
	})
	api.Post("/login", authHandler.Login)

	// === PROTECTED ROUTES (JWT) ===
	api.Use(middleware.JWTProtected())

	// User Profile
	api.Get("/me", authHandler.GetProfile)

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(middleware.RoleProtected(models.RoleAdmin))
	admin.Post("/register", authHandler.Register)
	admin.Get("/users", handlers.GetUsers(repo))
	admin.Put("/users/:id", handlers.UpdateUser(repo))
	admin.Delete("/users/:id", handlers.DeleteUser(repo))
	admin.Get("/branches", handlers.GetBranches(repo))
	admin.Post("/branches", handlers.CreateBranch(repo))

	// Product Routes
	products := api.Group("/products")
	products.Get("", handlers.GetProducts(repo))
	products.Get("/:id", handlers.GetProduct(repo))
	products.Use(middleware.RoleProtected(models.RoleAdmin, models.RoleManager))
	products.Post("", handlers.CreateProduct(repo))
	products.Put("/:id", handlers.UpdateProduct(repo))
	products.Delete("/:id", handlers.DeleteProduct(repo))

	// Inventory Routes
	inventory := api.Group("/inventory")
	inventory.Use(middleware.RoleProtected(models.RoleAdmin, models.RoleManager))
	inventory.Post("/stock-in", handlers.StockIn(engine))
	inventory.Post("/write-off", handlers.StockWriteOff(engine))
	inventory.Get("/alerts", handlers.StockAlerts(engine, cfgs))

	// Customer Routes
	customers := api.Group("/customers")
	customers.Get("", handlers.GetCustomers(repo))
	customers.Get("/:id", handlers.GetCustomer(repo))
	customers.Post("", handlers.CreateCustomer(repo))
	customers.Put("/:id", handlers.UpdateCustomer(repo))
	customers.Delete("/:id", handlers.DeleteCustomer(repo))

	// POS Routes
	posRoutes := api.Group("/pos")
	posRoutes.Use(middleware.RoleProtected(models.RoleCashier, models.RoleManager, models.RoleAdmin))
	posRoutes.Post("/checkout", handlers.Checkout(engine, cfgs))
	posRoutes.Get("/sales", handlers.ListSales(engine))
	posRoutes.Get("/sales/:id", handlers.GetSale(engine))
	posRoutes.Post("/sales/:id/refund", handlers.RefundSale(engine, cfgs))
	posRoutes.Patch("/sales/:id/status", handlers.SetSaleStatus(engine))

	// Reports Routes
	reports := api.Group("/reports")
	reports.Use(middleware.RoleProtected(models.RoleAdmin, models.RoleManager))
	reports.Get("/sales", handlers.GetSaleStats(engine))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server listening on port :" + port)
	log.Fatal(app.Listen(":" + port))
}

// openStore picks the persistence backend: PostgreSQL when DB_HOST is
// configured, otherwise the in-memory store for single-node dev mode.
func openStore() store.Repository {
	if os.Getenv("DB_HOST") != "" {
		database.Connect()
		return gormdb.New(database.DB)
	}

	log.Println("WARNING: DB_HOST not set, using in-memory store (data is lost on restart)")
	mem := memory.New()
	seedMemory(mem)
	return mem
}

// seedMemory puts a branch and an admin account into the dev store so the
// API is usable immediately.
func seedMemory(mem *memory.Store) {
	ctx := context.Background()

	branch := models.Branch{
		ID:      envOr("SEED_BRANCH_ID", uuid.New().String()),
		StoreID: envOr("SEED_STORE_ID", uuid.New().String()),
		Name:    envOr("SEED_BRANCH_NAME", "Main Branch"),
	}
	if err := mem.CreateBranch(ctx, &branch); err != nil {
		log.Fatal("Seeding dev branch failed: ", err)
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("WARNING: using default admin password. Set SEED_ADMIN_PASSWORD to override.")
	}
	hash, err := middleware.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash seed password: ", err)
	}
	admin := models.User{
		ID:           uuid.New().String(),
		Username:     envOr("SEED_ADMIN_USERNAME", "admin"),
		Password:     hash,
		Role:         models.RoleAdmin,
		BranchAccess: []string{branch.ID},
	}
	if err := mem.CreateUser(ctx, &admin); err != nil {
		log.Fatal("Seeding dev admin failed: ", err)
	}
	log.Printf("Dev store ready: branch=%s admin=%s", branch.ID, admin.Username)
}

// buildGate wires the subscription gate. BLOCKED_STORE_IDS is a
// comma-separated list of store IDs with an overdue subscription; in a
// full deployment this is an adapter over the billing service.
func buildGate() policy.Gate {
	raw := os.Getenv("BLOCKED_STORE_IDS")
	if raw == "" {
		return policy.AllowAll{}
	}
	blocked := map[string]bool{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			blocked[id] = true
		}
	}
	return policy.StaticGate{Blocked: blocked}
}

func branchConfigFromEnv() pos.Config {
	cfg := pos.DefaultConfig()
	if v := os.Getenv("POS_REQUIRE_CUSTOMER"); v == "true" {
		cfg.RequireCustomer = true
	}
	if v := os.Getenv("POS_LOYALTY_ENABLED"); v == "false" {
		cfg.LoyaltyEnabled = false
	}
	if v := os.Getenv("POS_RESTORE_STOCK_ON_REFUND"); v == "true" {
		cfg.RestoreStockOnRefund = true
	}
	if v := os.Getenv("POS_LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.LowStockThreshold = n
		}
	}
	if v := os.Getenv("POS_MAX_DISCOUNT_PERCENT"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			cfg.MaxDiscountPercent = d
		}
	}
	if v := os.Getenv("POS_ALLOWED_PAYMENT_METHODS"); v != "" {
		for _, m := range strings.Split(v, ",") {
			cfg.AllowedPaymentMethods = append(cfg.AllowedPaymentMethods, models.PaymentMethod(strings.TrimSpace(m)))
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
