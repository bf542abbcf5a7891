// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and HTTP routes
// together and runs the application.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/lkrweb/accounts/internal/config"
	"github.com/lkrweb/accounts/internal/database"
	"github.com/lkrweb/accounts/internal/handlers"
	"github.com/lkrweb/accounts/internal/i18n"
	"github.com/lkrweb/accounts/internal/repository"
	"github.com/lkrweb/accounts/internal/services/auth"
	"github.com/lkrweb/accounts/internal/services/email"
	"github.com/lkrweb/accounts/internal/services/recovery"
	"github.com/lkrweb/accounts/internal/services/session"
	"github.com/lkrweb/accounts/internal/templates"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(&cfg.Log)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (opens and migrates)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository and services
	repo := repository.New(db)

	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create email service: %w", err)
	}

	authService := auth.NewService(repo, mailer)
	recoveryService := recovery.NewService(repo, mailer)

	sessions, err := session.NewManager(&cfg.Session, cfg.Secure())
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	renderer, err := templates.New()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	e.Renderer = renderer

	setupMiddleware(e, cfg, repo, sessions)
	setupRoutes(e, repo, authService, recoveryService, sessions)

	return startWithGracefulShutdown(ctx, e, cfg)
}

func setupRoutes(e *echo.Echo, repo *repository.Repository, authService *auth.Service, recoveryService *recovery.Service, sessions *session.Manager) {
	h := handlers.New(repo)
	authHandler := handlers.NewAuth(authService, sessions)
	recoveryHandler := handlers.NewRecovery(recoveryService)

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET("/account", h.Account, requireAuth())

	g := e.Group("/auth")
	g.GET("/register", authHandler.RegisterPage)
	g.POST("/register", authHandler.Register)
	g.GET("/verify", authHandler.VerifyPage)
	g.POST("/verify", authHandler.Verify)
	g.GET("/login", authHandler.LoginPage)
	g.POST("/login", authHandler.Login)
	g.GET("/logout", authHandler.Logout)
	g.POST("/logout", authHandler.Logout)
	g.GET("/forgot-password", recoveryHandler.RequestPage)
	g.POST("/forgot-password", recoveryHandler.Request)
	g.GET("/reset-password", recoveryHandler.Confirm)
	g.POST("/set-new-password", recoveryHandler.SetPassword)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
		return err
	}

	slog.Info("server stopped")
	return nil
}
