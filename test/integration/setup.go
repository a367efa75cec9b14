package integration

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"decor-store/internal/auth"
	"decor-store/internal/config"
	"decor-store/internal/database"
	"decor-store/internal/handler"
	"decor-store/internal/importer"
	"decor-store/internal/middleware"
	"decor-store/internal/repository"
	"decor-store/internal/router"
	"decor-store/internal/service"
	"decor-store/internal/shipping"
	"decor-store/internal/validation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSessionSecret = "integration-secret-0123456789"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SetupTestDB starts PostgreSQL in a container, applies the migrations and
// opens a pool through the same code path the server uses.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	if err := database.Migrate(dbConfig.MigrationURL(), logger); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

// NewTestServer wires the full API on top of db.
func NewTestServer(t *testing.T, db *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	userRepo := repository.NewUserRepository(db.Pool, logger)
	sessionRepo := repository.NewSessionRepository(db.Pool, logger)

	rates := shipping.MustLoad()
	validate := validation.New()
	signer := auth.NewSigner(testSessionSecret)

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, rates, validate, logger)
	authService := service.NewAuthService(userRepo, sessionRepo, validate, 24*time.Hour, logger)

	return router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, validate, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Shipping: handler.NewShippingHandler(rates, validate, logger),
		Auth:     handler.NewAuthHandler(authService, signer, false, logger),
	}, router.Options{
		CORSAllowedOrigin: "*",
		Session:           middleware.Session(signer, authService, logger),
	}, logger)
}

// sampleSKUs yields two wallpapers: Nordwand Series 101 with two variants
// (stock 12) and Atelier Series 220 with one (stock 5).
const sampleSKUs = `cover_product_photo,name,brand,product_id,stock,variant_photo
images.example.com/101/cover.jpg,Ivory Linen,Nordwand,101,8,images.example.com/101/ivory.jpg
images.example.com/101/cover.jpg,Sage Linen,Nordwand,101,4,images.example.com/101/sage.jpg
https://images.example.com/220/cover.jpg,Terracotta Arch,Atelier,220,5,
`

// SeedCatalog imports sampleSKUs through the catalogue importer.
func SeedCatalog(t *testing.T, db *TestDB) importer.Result {
	t.Helper()

	path := filepath.Join(t.TempDir(), "skus.csv")
	if err := os.WriteFile(path, []byte(sampleSKUs), 0o600); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}

	logger := zerolog.Nop()
	imp := importer.New(importer.NewFileLoader(logger), repository.NewProductRepository(db.Pool, logger), logger)

	res, err := imp.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to seed catalogue: %v", err)
	}
	return res
}

// CleanupDB removes every row and resets the id sequences.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE order_items, orders, sessions, users, product_variants, products RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
