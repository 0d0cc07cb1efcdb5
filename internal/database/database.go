package database

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
)

var DB *gorm.DB

// Connect opens the PostgreSQL connection. TranslateError is on so
// duplicate-key violations surface as gorm.ErrDuplicatedKey, which the
// store layer maps to its conflict error.
func Connect() {
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	port := os.Getenv("DB_PORT")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})

	if err != nil {
		log.Fatal("Failed to connect to database. \nError: ", err)
	}

	log.Println("Database connection successful")
	DB = db
}

// Migrate runs the schema migration and seeds the initial branch and
// admin account.
func Migrate() {
	if DB == nil {
		Connect()
	}

	log.Println("Running schema migrations (Gorm AutoMigrate)...")
	err := DB.AutoMigrate(
		&models.Branch{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.SaleCounter{},
		&models.User{},
	)
	if err != nil {
		log.Fatal("Schema migration failed: ", err)
	}
	log.Println("Schema migrations completed")

	seed()
}

// seed creates a default branch and an admin user on first run. The admin
// password comes from SEED_ADMIN_PASSWORD; a hardcoded dev default is used
// with a warning when unset.
func seed() {
	var count int64
	DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Seed skipped: users already exist")
		return
	}

	storeID := envOr("SEED_STORE_ID", uuid.New().String())
	branch := models.Branch{
		ID:      envOr("SEED_BRANCH_ID", uuid.New().String()),
		StoreID: storeID,
		Name:    envOr("SEED_BRANCH_NAME", "Main Branch"),
	}
	if err := DB.Create(&branch).Error; err != nil {
		log.Fatal("Seeding branch failed: ", err)
	}

	adminPwd := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPwd == "" {
		adminPwd = "admin123"
		log.Println("WARNING: using default admin password. Set SEED_ADMIN_PASSWORD to override.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPwd), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash seed password: ", err)
	}

	admin := models.User{
		ID:           uuid.New().String(),
		Username:     envOr("SEED_ADMIN_USERNAME", "admin"),
		Password:     string(hash),
		Role:         models.RoleAdmin,
		BranchAccess: []string{branch.ID},
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatal("Seeding admin user failed: ", err)
	}

	log.Printf("Seeded branch %s and admin user %s", branch.ID, admin.Username)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
