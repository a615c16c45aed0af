package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/leafsense/internal/application"
	"github.com/bryanwahyu/leafsense/internal/application/analysis"
	appplants "github.com/bryanwahyu/leafsense/internal/application/plants"
	"github.com/bryanwahyu/leafsense/internal/config"
	domai "github.com/bryanwahyu/leafsense/internal/domain/ai"
	faultsdomain "github.com/bryanwahyu/leafsense/internal/domain/faults"
	plantsdomain "github.com/bryanwahyu/leafsense/internal/domain/plants"
	"github.com/bryanwahyu/leafsense/internal/infra/ai/gemini"
	aiopenai "github.com/bryanwahyu/leafsense/internal/infra/ai/openai"
	"github.com/bryanwahyu/leafsense/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/leafsense/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/leafsense/internal/infra/db/postgres"
	"github.com/bryanwahyu/leafsense/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/leafsense/internal/infra/storage"
	"github.com/bryanwahyu/leafsense/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// repositories per configured driver
	var (
		plantRepo plantsdomain.Repository
		faultRepo faultsdomain.Repository
		db        *sql.DB
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		plantRepo = mysqlp.NewPlantRepository(db)
		faultRepo = mysqlp.NewFaultRepository(db)
	case "postgres":
		db, err = pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		plantRepo = pgp.NewPlantRepository(db)
		faultRepo = pgp.NewFaultRepository(db)
	case "memory":
		plantRepo = memory.NewPlantRepository()
		faultRepo = memory.NewFaultRepository()
	default:
		log.Fatalf("unknown database driver: %s", cfg.Database.Driver)
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// inference backend per configured provider
	var backend domai.Streamer
	switch cfg.AI.Provider {
	case "openai":
		backend = aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	case "gemini":
		g, err := gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("gemini init error: %v", err)
		}
		defer g.Close()
		backend = g
	default:
		log.Fatalf("unknown ai provider: %s", cfg.AI.Provider)
	}

	engine := &analysis.Engine{
		Backend:         backend,
		FragmentTimeout: cfg.FragmentTimeout(),
	}
	registry := analysis.NewRegistry(engine, plantRepo, faultRepo, application.SystemClock{})
	plantsSvc := &appplants.Service{Repo: plantRepo, Faults: faultRepo}

	// health checks
	checkers := map[string]middleware.HealthChecker{
		"storage": middleware.CheckerFunc(store.Check),
	}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(plantsSvc, registry, store, cfg.AnalysisTimeout()))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
