package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/labassist/labassist/internal/config"
	"github.com/labassist/labassist/internal/domain/admin"
	"github.com/labassist/labassist/internal/domain/diagnostics"
	"github.com/labassist/labassist/internal/domain/identity"
	"github.com/labassist/labassist/internal/platform/auth"
	"github.com/labassist/labassist/internal/platform/db"
	"github.com/labassist/labassist/internal/platform/metrics"
	"github.com/labassist/labassist/internal/platform/middleware"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// patientHeaders lets the report service read patients without depending
// on the identity package.
type patientHeaders struct {
	svc *identity.Service
}

func (p patientHeaders) PatientHeader(ctx context.Context, id uuid.UUID) (*diagnostics.PatientHeader, error) {
	pt, err := p.svc.GetPatient(ctx, id)
	if err != nil {
		if errors.Is(err, identity.ErrPatientNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, err
	}
	return &diagnostics.PatientHeader{
		FullName:      pt.FullName,
		PatientCode:   pt.PatientCode,
		Age:           pt.Age,
		Gender:        pt.Gender,
		ContactNumber: pt.ContactNumber,
		RefBy:         pt.RefBy,
	}, nil
}

// server bundles what the HTTP layer needs.
type server struct {
	cfg         *config.Config
	logger      zerolog.Logger
	pool        *pgxpool.Pool
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	issuer      *auth.Issuer
	identity    *identity.Service
	diagnostics *diagnostics.Service
	admin       *admin.Service
	system      *systemHandler
}

func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool) *server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	issuer := auth.NewIssuer(cfg.JWTSecretKey, cfg.TokenTTL)

	identitySvc := identity.NewService(identity.NewPatientRepo(pool), identity.NewDoctorRepo(pool))
	diagSvc := diagnostics.NewService(
		diagnostics.NewCatalogRepo(pool),
		diagnostics.NewResultRepo(pool),
		diagnostics.NewReportLogRepo(pool),
		patientHeaders{svc: identitySvc},
	).WithObserver(m)
	adminSvc := admin.NewService(admin.NewLabRepo(pool), admin.NewUserRepo(pool), issuer)
	adminSvc.SetLoginObserver(m)

	migrator := db.NewMigrator(cfg.DatabaseURL)
	sys := newSystemHandler(migrator.Up, func(ctx context.Context) error {
		_, err := adminSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		return err
	})

	return &server{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		registry:    reg,
		metrics:     m,
		issuer:      issuer,
		identity:    identitySvc,
		diagnostics: diagSvc,
		admin:       adminSvc,
		system:      sys,
	}
}

func (s *server) echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(s.logger)

	// Global middleware
	e.Use(middleware.Recovery(s.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(s.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Metrics(s.metrics))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  s.cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"X-Total-Count", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(s.cfg.RequestTimeout))
	e.Use(middleware.Sanitize(s.logger))
	e.Use(auth.JWTMiddleware(s.issuer, auth.AuthSkipper))
	e.Use(middleware.Audit(s.logger))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(s.pool))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))

	api := e.Group("/api")

	loginLimit := middleware.DefaultRateLimitConfig()
	loginLimit.RequestsPerSecond = s.cfg.LoginRateLimitRPS
	loginLimit.BurstSize = s.cfg.LoginRateLimitBurst
	loginLimit.OnLimited = s.metrics.RateLimited.Inc

	admin.NewHandler(s.admin).RegisterRoutes(api, middleware.RateLimit(loginLimit))
	identity.NewHandler(s.identity).RegisterRoutes(api)
	diagnostics.NewHandler(s.diagnostics).RegisterRoutes(api)
	s.system.RegisterRoutes(api)

	return e
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg)

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	srv := newServer(cfg, logger, pool)

	if cfg.AutoMigrate {
		fresh, err := srv.system.initialize(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("database initialization failed")
		}
		logger.Info().Bool("fresh", fresh).Msg("database schema up to date")
	}

	e := srv.echo()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
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
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
