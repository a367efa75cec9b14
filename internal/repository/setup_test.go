package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"decor-store/internal/database"
	"decor-store/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL testcontainer, applies the migrations and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationURL := "pgx5" + strings.TrimPrefix(connStr, "postgres")
	require.NoError(t, database.Migrate(migrationURL, zerolog.Nop()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, p model.Product) model.Product {
	t.Helper()

	query := `
		INSERT INTO products (name, type, description, price, stock, image_url, color_hex, room_category, is_new_arrival)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := pool.QueryRow(context.Background(), query,
		p.Name, p.Type, p.Description, p.Price, p.Stock, p.ImageURL, p.ColorHex, p.RoomCategory, p.IsNewArrival,
	).Scan(&p.ID)
	require.NoError(t, err)
	return p
}

func seedUser(t *testing.T, pool *pgxpool.Pool, username string) string {
	t.Helper()

	var id string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (username, password_hash) VALUES ($1, 'x') RETURNING id`, username,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// catalogFixture is a small catalogue covering every filter dimension.
func catalogFixture() []model.Product {
	return []model.Product{
		{Name: "Velvet Damask", Type: model.ProductTypeWallpaper, Price: price("450000"), Stock: 10, ColorHex: "#FFFFFF", RoomCategory: "living_room", IsNewArrival: true},
		{Name: "Jute Runner", Type: model.ProductTypeRug, Price: price("125000"), Stock: 4, ColorHex: "#C2B280", RoomCategory: "bedroom"},
		{Name: "Oak Slat Panel", Type: model.ProductTypeWallPanel, Price: price("300000"), Stock: 7, ColorHex: "#8B5A2B", RoomCategory: "living_room"},
		{Name: "Linen 100% Blend", Type: model.ProductTypeWallpaper, Price: price("380000"), Stock: 3, ColorHex: "#FFFFFF", RoomCategory: "bedroom"},
		{Name: "Wool_Kilim", Type: model.ProductTypeRug, Price: price("700000"), Stock: 1, ColorHex: "#AA0000", RoomCategory: "living_room", IsNewArrival: true},
	}
}
