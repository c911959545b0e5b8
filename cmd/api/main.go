package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/assetdesk/assetdesk-backend/api/routes"
	"github.com/assetdesk/assetdesk-backend/internal/assignments"
	authsvc "github.com/assetdesk/assetdesk-backend/internal/auth"
	"github.com/assetdesk/assetdesk-backend/internal/dashboard"
	"github.com/assetdesk/assetdesk-backend/internal/employees"
	inventorysvc "github.com/assetdesk/assetdesk-backend/internal/inventory"
	"github.com/assetdesk/assetdesk-backend/internal/orgs"
	productsvc "github.com/assetdesk/assetdesk-backend/internal/products"
	"github.com/assetdesk/assetdesk-backend/internal/refs"
	stocksvc "github.com/assetdesk/assetdesk-backend/internal/stock"
	userssvc "github.com/assetdesk/assetdesk-backend/internal/users"
	"github.com/assetdesk/assetdesk-backend/pkg/auth/session"
	"github.com/assetdesk/assetdesk-backend/pkg/config"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/assetdesk/assetdesk-backend/pkg/metrics"
	"github.com/assetdesk/assetdesk-backend/pkg/migrate"
	"github.com/assetdesk/assetdesk-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(dbClient, sessionManager, cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, metricsHandler, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(dbClient *db.Client, sessionManager *session.Manager, cfg *config.Config) (routes.Services, error) {
	conn := dbClient.DB()
	checker := refs.NewChecker(conn)

	usersRepo := userssvc.NewRepository(conn)
	productsRepo := productsvc.NewRepository(conn)

	stockService, err := stocksvc.NewService(stocksvc.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	inventoryService, err := inventorysvc.NewService(inventorysvc.NewRepository(conn), stockService, checker, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	productsService, err := productsvc.NewService(productsRepo, inventoryService, checker, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	assignmentsService, err := assignments.NewService(assignments.NewRepository(conn), inventoryService, stockService, checker, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	employeesService, err := employees.NewService(employees.NewRepository(conn), checker, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	orgsService, err := orgs.NewService(orgs.NewRepository(conn), dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	usersService, err := userssvc.NewService(usersRepo, dbClient, cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	authService, err := authsvc.NewService(usersRepo, sessionManager, cfg.JWT)
	if err != nil {
		return routes.Services{}, err
	}
	dashboardService, err := dashboard.NewService(dashboard.NewRepository(conn), productsRepo, stockService, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:        authService,
		Users:       usersService,
		Products:    productsService,
		Inventory:   inventoryService,
		Stock:       stockService,
		Assignments: assignmentsService,
		Employees:   employeesService,
		Orgs:        orgsService,
		Dashboard:   dashboardService,
	}, nil
}
