// Command migrate applies the database schema for UmmahTube.
package main

import (
	"log"

	"ummahtube/internal/config"
	"ummahtube/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Connect already automigrates outside production; run explicitly so this
	// command also works with APP_ENV=production.
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("✓ Schema migration completed")
}
