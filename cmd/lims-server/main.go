package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/librelims/lims/internal/config"
	"github.com/librelims/lims/internal/domain/billing"
	"github.com/librelims/lims/internal/domain/exams"
	"github.com/librelims/lims/internal/domain/orders"
	"github.com/librelims/lims/internal/domain/patients"
	"github.com/librelims/lims/internal/domain/pricing"
	"github.com/librelims/lims/internal/domain/referrals"
	"github.com/librelims/lims/internal/domain/results"
	"github.com/librelims/lims/internal/platform/auth"
	"github.com/librelims/lims/internal/platform/clock"
	"github.com/librelims/lims/internal/platform/db"
	"github.com/librelims/lims/internal/platform/middleware"
)

// resultCreatorAdapter adapts the results service to the orders.ResultCreator
// interface, avoiding a circular import between the two packages.
type resultCreatorAdapter struct {
	svc *results.Service
}

func (a *resultCreatorAdapter) CreateForOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := a.svc.CreateForOrder(ctx, orderID)
	return err
}

// orderLineAdapter exposes order details to the results orchestrator.
type orderLineAdapter struct {
	details orders.DetailRepository
}

func (a *orderLineAdapter) LinesOf(ctx context.Context, orderID uuid.UUID) ([]results.OrderLine, error) {
	details, err := a.details.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines := make([]results.OrderLine, len(details))
	for i, d := range details {
		lines[i] = results.OrderLine{ID: d.ID, ExamID: d.ExamID}
	}
	return lines, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "lims-server",
		Short: "Clinical lab LIMS API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the LIMS API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	registerDomains(apiV1, pool)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// registerDomains wires repositories, services, and handlers.
func registerDomains(apiV1 *echo.Group, pool *pgxpool.Pool) {
	clk := clock.New()
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// patients
	patientSvc := patients.NewService(patients.NewPatientRepoPG(pool), patients.NewLeadSourceRepoPG(pool))
	patients.NewHandler(patientSvc).RegisterRoutes(apiV1)

	// exams
	examSvc := exams.NewService(exams.NewExamRepoPG(pool), exams.NewComponentRepoPG(pool),
		exams.NewCategoryRepoPG(pool), txRunner)
	exams.NewHandler(examSvc).RegisterRoutes(apiV1)

	// referrals
	referralSvc := referrals.NewService(referrals.NewReferralRepoPG(pool))
	referrals.NewHandler(referralSvc).RegisterRoutes(apiV1)

	// pricing
	pricingSvc := pricing.NewService(pricing.NewPriceListRepoPG(pool), pricing.NewItemRepoPG(pool),
		pricing.NewCouponRepoPG(pool), examSvc, referralSvc, clk)
	pricing.NewHandler(pricingSvc).RegisterRoutes(apiV1)

	// results (wired before orders so the payment flow can create them)
	orderDetailRepo := orders.NewDetailRepoPG(pool)
	resultSvc := results.NewService(results.NewResultRepoPG(pool), results.NewDetailRepoPG(pool),
		&orderLineAdapter{details: orderDetailRepo}, examSvc, txRunner)
	results.NewHandler(resultSvc).RegisterRoutes(apiV1)

	// orders
	orderSvc := orders.NewService(orders.NewOrderRepoPG(pool), orderDetailRepo,
		patientSvc, examSvc, pricingSvc, &resultCreatorAdapter{svc: resultSvc}, clk, txRunner)
	orders.NewHandler(orderSvc).RegisterRoutes(apiV1)

	// billing
	billingSvc := billing.NewService(billing.NewCompanyRepoPG(pool))
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)
}
