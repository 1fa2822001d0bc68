package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehrclinic/records-service/internal/auth"
	"github.com/mehrclinic/records-service/internal/httpapi"
	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/store"
	"github.com/mehrclinic/records-service/internal/telemetry"
)

func main() {
	log.Println("records-service starting")

	ctx := context.Background()

	// Telemetry first so everything below is instrumented.
	otelCfg := telemetry.LoadConfig()
	provider, err := telemetry.InitProvider(ctx, otelCfg)
	if err != nil {
		log.Printf("Warning: telemetry init failed: %v", err)
	}
	if provider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			provider.Shutdown(shutdownCtx)
		}()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: metrics init failed: %v", err)
	}

	st, err := openStore()
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}

	var publisher messaging.PublisherInterface = messaging.NopPublisher{}
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		p, err := messaging.NewPublisher(url)
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	verifier, perms := setupAuth()

	router := httpapi.SetupRouter(httpapi.Options{
		Store:     st,
		Publisher: publisher,
		Metrics:   metrics,
		Verifier:  verifier,
		Perms:     perms,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: httpapi.CORSMiddleware(router),
	}

	go func() {
		log.Printf("✓ Listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// openStore selects the document store backend: flat JSON files by default,
// PostgreSQL when STORE_BACKEND=postgres.
func openStore() (store.Store, error) {
	if os.Getenv("STORE_BACKEND") == "postgres" {
		return store.NewPGStore()
	}
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "./data"
	}
	return store.NewFileStore(dir)
}

// setupAuth builds the optional token verifier. Without AUTH_JWKS_URL the
// API runs unauthenticated.
func setupAuth() (*auth.Verifier, auth.Permissions) {
	cfg := auth.LoadConfig()
	if !cfg.Enabled() {
		log.Println("Auth disabled (AUTH_JWKS_URL not set)")
		return nil, nil
	}

	jwks, err := auth.NewJWKS(cfg.JWKSURL, 0)
	if err != nil {
		log.Fatalf("Failed to load JWKS: %v", err)
	}

	permsPath := os.Getenv("PERMISSIONS_FILE")
	if permsPath == "" {
		permsPath = "permissions.yml"
	}
	perms, err := auth.LoadPermissions(permsPath)
	if err != nil {
		log.Fatalf("Failed to load permissions: %v", err)
	}

	log.Println("✓ Auth enabled")
	return auth.NewVerifier(cfg, jwks), perms
}
