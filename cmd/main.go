package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrocore-service/internal/handler"
	"agrocore-service/internal/identity"
	"agrocore-service/internal/middleware"
	"agrocore-service/internal/scheduler"
	"agrocore-service/internal/seed"
	"agrocore-service/pkg/config"
	"agrocore-service/pkg/database"
	"agrocore-service/pkg/jwtutil"
	"agrocore-service/pkg/logger"
	"agrocore-service/pkg/validator"
	"agrocore-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	serve := serveCmd()

	rootCmd := &cobra.Command{
		Use:   "agrocore",
		Short: "Agriculture business management service",
		RunE:  serve.RunE,
	}
	rootCmd.AddCommand(serve, migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, the logger and the database
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	if !cfg.EnvFileLoaded {
		log.Warn(".env file not found, using environment variables")
	}

	if err := database.InitDB(cfg, log); err != nil {
		return nil, nil, err
	}
	log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))

	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// InitDB migrates
			_, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the built-in admin and IT support accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			return seed.Run(cmd.Context(), database.GetDB(), &cfg.Seed, log)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			log.Info("Starting agrocore service...", zap.String("environment", cfg.Server.Env))

			if err := seed.Run(cmd.Context(), database.GetDB(), &cfg.Seed, log); err != nil {
				return fmt.Errorf("failed to seed accounts: %w", err)
			}

			jwtutil.Initialize(&cfg.JWT)
			identity.Init(cfg.Cache.PrincipalSize, cfg.Cache.PrincipalTTL)
			handler.Configure(cfg)

			if cfg.Scheduler.Enabled {
				s := scheduler.New(log)
				if err := scheduler.RegisterJobs(s, database.GetDB(), &cfg.Scheduler); err != nil {
					return err
				}
				s.Start()
				defer s.Shutdown()
				log.Info("Scheduler started", zap.Int("jobs", len(s.Entries())))
			}

			e := echo.New()
			e.HideBanner = true
			e.Validator = validator.New()

			// Apply global middleware - order matters
			e.Use(echomiddleware.Recover())
			e.Use(echomiddleware.CORS())
			e.Use(middleware.RequestIDMiddleware)
			e.Use(logger.Middleware(log))
			e.Use(prometheus.MetricsMiddleware())

			handler.RegisterRoutes(e)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				log.Info("Starting server", zap.String("port", cfg.Server.Port))
				if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Server stopped", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			log.Info("Shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
