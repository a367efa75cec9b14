// Package importer seeds the catalogue from SKU CSV exports, read from the
// local file system or S3.
package importer

import (
	"context"
	"fmt"
	"strings"

	"decor-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Defaults applied to every imported product and variant.
var (
	DefaultPrice = decimal.NewFromInt(450000)
)

const (
	DefaultColorHex = "#FFFFFF"
	DefaultRoom     = "living_room"
)

// Writer is the catalogue storage the importer writes through.
type Writer interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateProduct(ctx context.Context, tx pgx.Tx, product *model.Product) error
	CreateVariants(ctx context.Context, tx pgx.Tx, variants []model.ProductVariant) error
}

// Result counts what an import wrote.
type Result struct {
	Records  int
	Products int
	Variants int
}

// Build groups records by cover photo, in first-seen order, into one
// wallpaper product per group with one variant per record.
func Build(records []Record) []model.ProductWithVariants {
	var order []string
	groups := make(map[string][]Record)
	for _, r := range records {
		if _, ok := groups[r.CoverPhoto]; !ok {
			order = append(order, r.CoverPhoto)
		}
		groups[r.CoverPhoto] = append(groups[r.CoverPhoto], r)
	}

	out := make([]model.ProductWithVariants, 0, len(order))
	for _, cover := range order {
		rows := groups[cover]
		first := rows[0]

		suffix := ""
		if strings.Contains(strings.ToLower(first.Name), "test") {
			suffix = "_test"
		}

		p := model.ProductWithVariants{
			Product: model.Product{
				Name:         first.Brand + " Series " + first.ProductID + suffix,
				Type:         model.ProductTypeWallpaper,
				Description:  fmt.Sprintf("Premium wallpaper from the %s collection. Rich texture and lasting quality for your walls.", first.Brand),
				Price:        DefaultPrice,
				ImageURL:     imageURL(cover),
				ColorHex:     DefaultColorHex,
				RoomCategory: DefaultRoom,
				IsNewArrival: true,
			},
			Variants: make([]model.ProductVariant, 0, len(rows)),
		}

		for _, r := range rows {
			p.Stock += r.Stock

			v := model.ProductVariant{
				Name:     r.Name + suffix,
				Price:    DefaultPrice,
				Stock:    r.Stock,
				ColorHex: ptr(DefaultColorHex),
			}
			if r.VariantPhoto != "" {
				v.ImageURL = ptr(imageURL(r.VariantPhoto))
			}
			p.Variants = append(p.Variants, v)
		}

		out = append(out, p)
	}
	return out
}

// imageURL adds an https scheme to bare host/path photo references.
func imageURL(s string) string {
	if strings.HasPrefix(s, "http") {
		return s
	}
	return "https://" + s
}

func ptr[T any](v T) *T { return &v }

// Importer loads SKU files and writes them to the catalogue.
type Importer struct {
	loader Loader
	repo   Writer
	logger zerolog.Logger
}

// New creates an Importer.
func New(loader Loader, repo Writer, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		repo:   repo,
		logger: logger.With().Str("component", "importer").Logger(),
	}
}

// Import loads path and writes every product with its variants in its own
// transaction. It stops at the first product that fails; products written
// before it stay.
func (i *Importer) Import(ctx context.Context, path string) (Result, error) {
	records, err := i.loader.Load(ctx, path)
	if err != nil {
		return Result{}, err
	}

	res := Result{Records: len(records)}
	products := Build(records)

	i.logger.Info().
		Int("records", len(records)).
		Int("products", len(products)).
		Msg("importing catalogue")

	for idx := range products {
		p := &products[idx]
		if err := i.write(ctx, p); err != nil {
			return res, fmt.Errorf("import product %q: %w", p.Name, err)
		}
		res.Products++
		res.Variants += len(p.Variants)

		i.logger.Debug().
			Int64("product_id", p.ID).
			Str("name", p.Name).
			Int("variants", len(p.Variants)).
			Msg("product imported")
	}

	i.logger.Info().
		Int("products", res.Products).
		Int("variants", res.Variants).
		Msg("catalogue import completed")

	return res, nil
}

func (i *Importer) write(ctx context.Context, p *model.ProductWithVariants) (err error) {
	tx, err := i.repo.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				i.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = i.repo.CreateProduct(ctx, tx, &p.Product); err != nil {
		return err
	}

	for j := range p.Variants {
		p.Variants[j].ProductID = p.ID
	}
	if err = i.repo.CreateVariants(ctx, tx, p.Variants); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
