package importer

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Loader reads SKU records from a named source.
type Loader interface {
	Load(ctx context.Context, path string) ([]Record, error)
}

// fileLoader implements Loader for import files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based record loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a CSV file, gzipped or not.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]Record, error) {
	l.logger.Info().Str("file", filePath).Msg("loading import file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open import file")
		return nil, fmt.Errorf("failed to open import file %s: %w", filePath, err)
	}
	defer file.Close()

	records, err := ReadRecords(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading import file")
		return nil, fmt.Errorf("error reading import file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("records_loaded", len(records)).
		Msg("import file loaded successfully")

	return records, nil
}
