/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Dealflow Engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Seed stock project templates
  4. Create API handler and router
  5. Start the overdue-invoice sweep
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port           HTTP server port (default: 8080)
  -db             SQLite database path (default: dealflow.db)
                  Use ":memory:" for in-memory database
  -jwt-secret     HS256 signing secret; empty runs with a fixed dev identity
  -sweep-interval Overdue sweep interval (default: 1h; 0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweep, close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/dealflow.db"

  # Run with in-memory database and a faster sweep
  ./server -db=":memory:" -sweep-interval=1m

SEE ALSO:
  - api/server.go: Router configuration
  - api/sweep.go: Overdue sweep
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/dealflow-engine/api"
	"github.com/warp/dealflow-engine/factory"
	"github.com/warp/dealflow-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "dealflow.db", "SQLite database path")
	jwtSecret := flag.String("jwt-secret", "", "HS256 signing secret (empty = dev identity)")
	sweepInterval := flag.Duration("sweep-interval", time.Hour, "overdue sweep interval (0 disables)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed stock templates so a fresh database offers something to
	// instantiate. Upserts, so restarts are harmless.
	if err := seedTemplates(context.Background(), store); err != nil {
		log.Printf("Warning: failed to seed templates: %v", err)
	}

	// Initialize handler and router
	handler := api.NewHandler(store)
	router := api.NewRouter(handler, []byte(*jwtSecret))

	// Overdue sweep
	sweeper := api.NewOverdueSweeper(store, store)
	if *sweepInterval <= 0 {
		sweeper.Enabled = false
	} else {
		sweeper.CheckInterval = *sweepInterval
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func seedTemplates(ctx context.Context, store *sqlite.Store) error {
	for _, raw := range []string{factory.WebsiteProjectJSON(), factory.AutomationProjectJSON()} {
		tpl, err := factory.ParseTemplate(raw)
		if err != nil {
			return err
		}
		if err := store.PutTemplate(ctx, tpl); err != nil {
			return err
		}
	}
	return nil
}
