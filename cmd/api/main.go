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

	"github.com/IvanGD/engine-diagnostic-site/internal/application"
	appcases "github.com/IvanGD/engine-diagnostic-site/internal/application/cases"
	appusers "github.com/IvanGD/engine-diagnostic-site/internal/application/users"
	"github.com/IvanGD/engine-diagnostic-site/internal/config"
	domcases "github.com/IvanGD/engine-diagnostic-site/internal/domain/cases"
	"github.com/IvanGD/engine-diagnostic-site/internal/domain/diagnosis"
	domusers "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
	aiDiag "github.com/IvanGD/engine-diagnostic-site/internal/infra/ai/openai"
	mysqlp "github.com/IvanGD/engine-diagnostic-site/internal/infra/db/mysql"
	postgresp "github.com/IvanGD/engine-diagnostic-site/internal/infra/db/postgres"
	sqlitep "github.com/IvanGD/engine-diagnostic-site/internal/infra/db/sqlite"
	"github.com/IvanGD/engine-diagnostic-site/internal/infra/httpserver"
	minioStore "github.com/IvanGD/engine-diagnostic-site/internal/infra/storage"
	"github.com/IvanGD/engine-diagnostic-site/internal/middleware"
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

	// connect storage per configured driver
	var (
		db       *sql.DB
		caseRepo domcases.Repository
		userRepo domusers.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		caseRepo = mysqlp.NewCaseRepository(db)
		userRepo = mysqlp.NewUserRepository(db)
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		caseRepo = postgresp.NewCaseRepository(db)
		userRepo = postgresp.NewUserRepository(db)
	case "sqlite":
		db, err = sqlitep.Connect(ctx, cfg.Database.Path)
		if err != nil {
			log.Fatalf("sqlite connect error: %v", err)
		}
		caseRepo = sqlitep.NewCaseRepository(db)
		userRepo = sqlitep.NewUserRepository(db)
	default:
		log.Fatalf("unknown database driver: %q", cfg.Database.Driver)
	}
	defer db.Close()

	// image store is optional: without an endpoint, uploads are rejected
	// with a validation error but text-only cases still work
	var images domcases.ImageStore
	if cfg.Minio.Endpoint != "" {
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
		images = store
	}

	// the rule engine is the default diagnoser; the model-backed one is
	// strictly opt-in
	var diag diagnosis.Diagnoser = diagnosis.NewRuleEngine()
	if cfg.AI.Enabled {
		diag = aiDiag.NewDiagnoser(cfg.AI.APIKey, cfg.AI.Model)
	}

	sessions := appusers.NewSessionStore(time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute)

	casesSvc := &appcases.Service{
		Repo:   caseRepo,
		Diag:   diag,
		Images: images,
		Clock:  application.SystemClock{},
	}
	usersSvc := &appusers.Service{
		Repo:     userRepo,
		Sessions: sessions,
		Clock:    application.SystemClock{},
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Mount("/", httpserver.NewRouter(casesSvc, usersSvc, sessions))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s (driver=%s)", addr, cfg.Database.Driver)
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
