package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hrpanel/hrpanel-api/internal/config"
	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/hrpanel/hrpanel-api/internal/handlers"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	authmw "github.com/hrpanel/hrpanel-api/internal/middleware"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/hrpanel/hrpanel-api/internal/telegram"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	verifier := telegram.NewVerifier(cfg.BotToken)
	if !cfg.SignatureCheckEnabled() {
		logger.Warn(ctx, "BOT_TOKEN is not set, init data signatures are not checked")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret)
	accountService := services.NewAccountService(db, logger)
	adminService := services.NewAdminService(db, logger)
	sessionService := services.NewSessionService(jwtService, accountService)

	authHandler := handlers.NewAuthHandler(verifier, accountService, jwtService, logger)
	profileHandler := handlers.NewProfileHandler(accountService, logger)
	adminHandler := handlers.NewAdminHandler(accountService, adminService, logger)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/telegram", authHandler.TelegramAuth)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authmw.Auth(sessionService, logger))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	admin := protected.Group("")
	admin.Use(authmw.RequireAdmin())

	admin.Get("/admins", adminHandler.ListAdmins)
	admin.Post("/admins", adminHandler.CreateAdmin)
	admin.Delete("/admins/:id", adminHandler.RevokeAdmin)
	admin.Get("/pending-admins", adminHandler.ListPending)
	admin.Delete("/pending-admins/:handle", adminHandler.RemovePending)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info(ctx, "server starting", "addr", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server")
}
