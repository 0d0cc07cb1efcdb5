package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/GodwinAdu/retail-pos-sub000/internal/database"
)

func main() {
	// 1. Load env
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	// 2. Connect Database
	database.Connect()

	// 3. Run migrations and seed
	database.Migrate()
}
