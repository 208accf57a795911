package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"intellishield.dev/internal/auth"
	"intellishield.dev/internal/extinguisher"
	"intellishield.dev/internal/httpapi"
	"intellishield.dev/internal/obs"
	"intellishield.dev/internal/store/pg"
	"intellishield.dev/internal/stream"
)

var version = "0.3.1"

func main() {
	// observability first: metric registration, JSON logger
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("INTELLISHIELD_COMMIT"))

	secret := os.Getenv("INTELLISHIELD_AUTH_SECRET")
	if secret == "" {
		log.Fatal("INTELLISHIELD_AUTH_SECRET is required")
	}
	alg := os.Getenv("INTELLISHIELD_AUTH_ALG")
	if alg == "" {
		alg = "HS256"
	}
	issuer, err := auth.NewIssuer(secret, alg)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	// Postgres when a DSN is set; in-memory stores otherwise so the
	// service can run without infrastructure.
	var (
		authStore     auth.Store
		registryStore extinguisher.Store
		db            *sql.DB
	)
	if dsn := os.Getenv("INTELLISHIELD_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		authStore = store
		registryStore = store
		db = store.DB()
	} else {
		log.Println("INTELLISHIELD_PG_DSN not set, using in-memory stores")
		authStore = auth.NewInMemory()
		registryStore = extinguisher.NewInMemory()
	}

	authSvc := auth.NewService(authStore, issuer)
	registry := extinguisher.NewService(registryStore)
	hub := stream.New()

	api := httpapi.New(authSvc, registry, httpapi.ReadyProbe{DB: db}, version,
		httpapi.WithStream(hub),
	)

	addr := os.Getenv("INTELLISHIELD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting intellishield-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
