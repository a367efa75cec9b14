//go:build ignore

// Checks that the database configured in the environment (or .env) is
// reachable and reports the applied schema version:
//
//	go run scripts/check_db.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"decor-store/internal/config"

	"github.com/jackc/pgx/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var version int64
	var dirty bool
	err = conn.QueryRow(ctx, "SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		fmt.Println("No migrations applied")
	case err != nil:
		fmt.Println("Schema not initialised (run the API with DB_MIGRATE_ON_START=true or cmd/seed)")
	default:
		fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)
	}
}
