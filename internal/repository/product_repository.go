package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"decor-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, type, description, price, stock, image_url, color_hex, room_category, is_new_arrival`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// List retrieves every product matching the filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Interface("filter", filter).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}
	return products, nil
}

// buildListQuery turns a filter into a conjunctive WHERE clause with positional arguments.
func buildListQuery(filter model.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Room != "" {
		add("room_category = $%d", filter.Room)
	}
	if filter.Color != "" {
		add("color_hex = $%d", filter.Color)
	}
	if filter.Search != "" {
		add(`name ILIKE $%d ESCAPE '\'`, "%"+escapeLike(filter.Search)+"%")
	}
	// Best sellers are everything that is not a new arrival.
	if filter.BestSeller {
		conds = append(conds, "is_new_arrival = FALSE")
	}
	if filter.NewArrival {
		conds = append(conds, "is_new_arrival = TRUE")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(productColumns)
	sb.WriteString(" FROM products")
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id")

	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetVariants retrieves the variants of a product.
func (r *productRepository) GetVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	query := `
		SELECT id, product_id, name, price, stock, image_url, color_hex
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	variants := []model.ProductVariant{}
	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Stock, &v.ImageURL, &v.ColorHex); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// GetByIDs retrieves multiple products by their IDs. Unknown IDs are ignored.
func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return collectProducts(rows)
}

// BeginTx starts a new database transaction.
func (r *productRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateProduct inserts a product within the provided transaction.
func (r *productRepository) CreateProduct(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	query := `
		INSERT INTO products (name, type, description, price, stock, image_url, color_hex, room_category, is_new_arrival)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		p.Name, p.Type, p.Description, p.Price, p.Stock,
		p.ImageURL, p.ColorHex, p.RoomCategory, p.IsNewArrival,
	).Scan(&p.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// CreateVariants inserts variants within the provided transaction.
func (r *productRepository) CreateVariants(ctx context.Context, tx pgx.Tx, variants []model.ProductVariant) error {
	if len(variants) == 0 {
		return nil
	}

	query := `
		INSERT INTO product_variants (product_id, name, price, stock, image_url, color_hex)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, v := range variants {
		batch.Queue(query, v.ProductID, v.Name, v.Price, v.Stock, v.ImageURL, v.ColorHex)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range variants {
		if err := results.QueryRow().Scan(&variants[i].ID); err != nil {
			r.logger.Error().
				Err(err).
				Int64("product_id", variants[i].ProductID).
				Str("variant", variants[i].Name).
				Msg("failed to create variant")
			return fmt.Errorf("failed to create variant: %w", err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Description, &p.Price, &p.Stock,
		&p.ImageURL, &p.ColorHex, &p.RoomCategory, &p.IsNewArrival,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
