package catalog

import (
	"context"
	"fmt"
	"os"

	"decor-shop/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for feeds on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "feed-loader").Logger(),
	}
}

// Load reads a gzipped feed file.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.ProductRequest, error) {
	l.logger.Info().Str("file", filePath).Msg("loading feed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open feed file")
		return nil, fmt.Errorf("failed to open feed file %s: %w", filePath, err)
	}
	defer file.Close()

	return decodeFeed(ctx, file, filePath, l.logger)
}
