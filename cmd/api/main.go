package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/stdr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"audit-portal-go/internal/apikey"
	"audit-portal-go/internal/audit"
	"audit-portal-go/internal/database"
	"audit-portal-go/internal/handler"
	"audit-portal-go/internal/region"
	"audit-portal-go/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stdr.SetVerbosity(cfg.LogVerbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize region selection
	regionMetrics := region.NewMetrics(registry)
	regions := region.NewRegistry(region.Endpoints{US: cfg.USEndpoint, IN: cfg.INEndpoint})
	prober := region.NewHTTPProber(cfg.ProbeTimeout, logger, regionMetrics)
	orchestrator := region.NewOrchestrator(regions, prober, logger, regionMetrics)

	for _, r := range regions.All() {
		log.Printf("[REGION] %s (%s) -> %s, egress %s", r.ID, r.DisplayName, r.EndpointBaseURL, r.FixedEgressAddress)
	}

	// Initialize services
	auditClient := audit.NewClient(cfg.AuditTimeout, logger)
	auditService := audit.NewService(orchestrator, auditClient, audit.NewPostgresStore(db), logger, registry)
	keyService := apikey.NewService(apikey.NewPostgresStore(db), 0, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Region:           handler.NewRegionHandler(orchestrator),
		Audit:            handler.NewAuditHandler(auditService),
		Callback:         handler.NewCallbackHandler(auditService, logger),
		APIKey:           handler.NewAPIKeyHandler(keyService),
		KeyAuthenticator: keyService,
		JWTSecret:        cfg.JWTSecret,
		CallbackSecret:   cfg.CallbackSecret,
		AllowOrigins:     cfg.CORSOrigins,
		Gatherer:         registry,
	})

	if cfg.CallbackSecret == "" {
		log.Printf("[CALLBACK] WARNING: No CALLBACK_SECRET configured, skipping authentication")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
