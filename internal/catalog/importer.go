package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"decor-shop/internal/cache"
	"decor-shop/internal/model"
	"decor-shop/internal/repository"

	"github.com/rs/zerolog"
)

// Importer loads feeds concurrently and upserts them into the catalogue.
type Importer struct {
	loader Loader
	repo   repository.ProductRepository
	cache  cache.Cache
	logger zerolog.Logger
	now    func() time.Time
}

// NewImporter creates a feed importer.
func NewImporter(loader Loader, repo repository.ProductRepository, c cache.Cache, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		repo:   repo,
		cache:  c,
		logger: logger.With().Str("component", "catalog-importer").Logger(),
		now:    time.Now,
	}
}

// Import loads every feed and writes the merged records in one transaction.
// When the same product ID appears more than once the record from the later
// feed in paths wins. Any feed failing to load aborts the import.
func (i *Importer) Import(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	type loadResult struct {
		index   int
		records []model.ProductRequest
		err     error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for idx, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			records, err := i.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, records: records, err: err}
		}(idx, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := make(map[string]model.ProductRequest)
	order := make([]string, 0)
	for idx, result := range results {
		if result.err != nil {
			i.logger.Error().Err(result.err).Str("feed", paths[idx]).Msg("failed to load feed")
			return 0, fmt.Errorf("failed to load feed %s: %w", paths[idx], result.err)
		}
		for _, rec := range result.records {
			if _, seen := merged[rec.ID]; !seen {
				order = append(order, rec.ID)
			}
			merged[rec.ID] = rec
		}
	}

	records := make([]model.ProductRequest, 0, len(order))
	for _, id := range order {
		records = append(records, merged[id])
	}

	if err := i.write(ctx, toProducts(records, i.now())); err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(order))
	for _, id := range order {
		keys = append(keys, cache.ProductKey(id))
	}
	if err := i.cache.Delete(ctx, keys...); err != nil {
		i.logger.Warn().Err(err).Msg("failed to evict imported products from cache")
	}
	if err := i.cache.BumpGeneration(ctx); err != nil {
		i.logger.Warn().Err(err).Msg("failed to bump catalog generation")
	}

	i.logger.Info().
		Int("feeds", len(paths)).
		Int("products", len(records)).
		Msg("catalog import complete")

	return len(records), nil
}

func (i *Importer) write(ctx context.Context, products []model.Product) (err error) {
	tx, err := i.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				i.logger.Error().Err(rbErr).Msg("failed to rollback import")
			}
		}
	}()

	if err = i.repo.UpsertBatch(ctx, tx, products); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
