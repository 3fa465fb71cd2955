// Package catalog imports product feeds into the catalogue. A feed is a
// gzipped file holding one JSON product record per line.
package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"decor-shop/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads a product feed.
type Loader interface {
	// Load reads the feed at path and returns its valid records.
	Load(ctx context.Context, path string) ([]model.ProductRequest, error)
}

// decodeFeed reads gzipped JSON lines from r. Malformed JSON fails the whole
// feed; records that parse but fail validation are skipped and logged.
func decodeFeed(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) ([]model.ProductRequest, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var records []model.ProductRequest
	lineNo, skipped := 0, 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Str("source", source).Msg("feed loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec model.ProductRequest
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("malformed record at %s:%d: %w", source, lineNo, err)
		}
		if err := rec.Validate(true); err != nil {
			skipped++
			logger.Warn().
				Str("source", source).
				Int("line", lineNo).
				Str("reason", err.Error()).
				Msg("skipping invalid feed record")
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading feed %s: %w", source, err)
	}

	logger.Info().
		Str("source", source).
		Int("records", len(records)).
		Int("skipped", skipped).
		Msg("feed loaded")

	return records, nil
}

// WriteFeed writes products to w in the feed format.
func WriteFeed(w io.Writer, records []model.ProductRequest) error {
	gzipWriter := gzip.NewWriter(w)
	encoder := json.NewEncoder(gzipWriter)

	for i := range records {
		if err := encoder.Encode(&records[i]); err != nil {
			_ = gzipWriter.Close()
			return fmt.Errorf("failed to encode record %s: %w", records[i].ID, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish feed: %w", err)
	}
	return nil
}

func toProducts(records []model.ProductRequest, now time.Time) []model.Product {
	products := make([]model.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].Product(now))
	}
	return products
}
