// Command seed imports a SKU CSV export into the catalogue.
//
// Usage:
//
//	seed [-reset] [-s3] path/to/skus.csv[.gz]
//
// With -s3 the path is read from the configured bucket under S3_PREFIX first
// and from the local file system if that fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"decor-store/internal/config"
	"decor-store/internal/database"
	"decor-store/internal/importer"
	"decor-store/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	reset := flag.Bool("reset", false, "drop and recreate the schema before importing")
	useS3 := flag.Bool("s3", false, "try the configured S3 bucket before the local file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("expected exactly one import file")
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reset {
		if err := database.Rollback(cfg.Database.MigrationURL(), logger); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}
	if err := database.Migrate(cfg.Database.MigrationURL(), logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	var loader importer.Loader = importer.NewFileLoader(logger)
	if *useS3 || cfg.S3.Enabled {
		s3Loader, err := importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
		loader = importer.NewFallbackLoader(s3Loader, loader, cfg.S3.Prefix, err == nil, logger)
	}

	imp := importer.New(loader, repository.NewProductRepository(pool, logger), logger)

	res, err := imp.Import(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d products with %d variants from %d rows\n", res.Products, res.Variants, res.Records)
	return nil
}
