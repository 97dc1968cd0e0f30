package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/config"
	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: promote-admin <telegram_username>")
		os.Exit(1)
	}

	handle := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.IsProduction())
	adminService := services.NewAdminService(db, logger)

	result, err := adminService.Promote(ctx, handle, uuid.Nil)
	if err != nil {
		log.Fatalf("Failed to promote %s: %v", handle, err)
	}

	if result.Account != nil {
		fmt.Printf("Successfully promoted @%s to admin\n", services.NormalizeHandle(handle))
		return
	}
	fmt.Printf("@%s has not signed in yet; admin rights will be granted on first sign-in\n", result.Pending.TelegramUsername)
}
