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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloghub/internal/auth"
	"github.com/bloghub/internal/cache"
	"github.com/bloghub/internal/config"
	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/handler"
	"github.com/bloghub/internal/logger"
	"github.com/bloghub/internal/router"
	"github.com/bloghub/internal/seed"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bloghub",
		Short:         "Blog content backend: posts, categories, tags, contact and bookings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateAdminCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			gdb, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDatabase(gdb)

			logger.Info("schema migrated", zap.String("driver", cfg.DatabaseDriver))
			return nil
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the administrator account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if name == "" {
				name = cfg.SuperRootUserName
			}
			if email == "" {
				email = cfg.AdminEmail
			}
			if password == "" {
				password = cfg.SuperRootPassword
			}
			if email == "" || password == "" {
				return errors.New("admin email and password are required (flags or ADMIN_EMAIL / SUPER_ROOT_PASSWORD)")
			}

			gdb, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDatabase(gdb)

			created, err := db.EnsureAdmin(gdb, name, email, password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin already exists, nothing to do\n")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "admin display name (default SUPER_ROOT_USER_NAME)")
	cmd.Flags().StringVar(&email, "email", "", "admin email (default ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default SUPER_ROOT_PASSWORD)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo categories, tags and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if author == "" {
				author = cfg.AdminEmail
			}
			if author == "" {
				return errors.New("author email is required (--author or ADMIN_EMAIL)")
			}

			gdb, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDatabase(gdb)

			result, err := seed.Run(cmd.Context(), gdb, author)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "posts already exist, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d categories, %d tags, %d posts\n", result.Categories, result.Tags, result.Posts)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "email of the user who authors the demo posts (default ADMIN_EMAIL)")
	return cmd
}

func bootstrap() (config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Development()); err != nil {
		return config.AppConfig{}, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg config.AppConfig) (*gorm.DB, error) {
	gdb, err := db.Open(db.Options{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabasePath,
		Silent: !cfg.Development(),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}

func closeDatabase(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("close database failed", zap.Error(err))
		}
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	gdb, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(gdb)

	if cfg.AdminEmail != "" && cfg.SuperRootPassword != "" {
		created, err := db.EnsureAdmin(gdb, cfg.SuperRootUserName, cfg.AdminEmail, cfg.SuperRootPassword)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		if created {
			logger.Info("admin account created", zap.String("email", cfg.AdminEmail))
		}
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	opts := router.Options{
		SessionSecret:      cfg.SessionSecret,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SecureCookies:      !cfg.Development(),
		Handler: handler.Options{
			AdminEmail:     cfg.AdminEmail,
			Tokens:         tokens,
			PublicPageSize: cfg.PublicPageSize,
		},
	}

	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			opts.Handler.Cache = cache.NewPostListCache(client, cfg.CacheTTL)
			logger.Info("listing cache enabled", zap.String("redis", cfg.RedisAddr))
		}
	}

	r, err := router.SetupRouter(gdb, opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
