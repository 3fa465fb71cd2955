package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"decor-shop/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []model.ProductRequest {
	return []model.ProductRequest{
		{ID: "SOFA-1", Name: "Linen Sofa", Category: "Sofas", Price: decimal.RequireFromString("899.00"), Stock: 3},
		{ID: "LAMP-1", Name: "Brass Lamp", Category: "Lighting", Price: decimal.RequireFromString("59.99"), Stock: 20, OnSale: true, Discount: 15},
	}
}

// createFeedFile writes records as a gzipped feed and returns its path.
func createFeedFile(t *testing.T, filename string, records []model.ProductRequest) string {
	path := filepath.Join(t.TempDir(), filename)

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, WriteFeed(file, records))
	return path
}

// createRawFeedFile gzips lines verbatim.
func createRawFeedFile(t *testing.T, lines []string) string {
	path := filepath.Join(t.TempDir(), "raw.jsonl.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	path := createFeedFile(t, "feed.jsonl.gz", sampleRecords())

	records, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "SOFA-1", records[0].ID)
	assert.True(t, decimal.RequireFromString("59.99").Equal(records[1].Price))
	assert.True(t, records[1].OnSale)
	assert.Equal(t, 15, records[1].Discount)
}

func TestFileLoader_Load_SkipsInvalidRecordsAndBlankLines(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	path := createRawFeedFile(t, []string{
		`{"id":"SOFA-1","name":"Linen Sofa","category":"Sofas","price":"899.00","stock":3}`,
		``,
		`   `,
		`{"id":"BAD-1","name":"Broken","category":"Sofas","price":"10","stock":-1}`,
		`{"id":"BAD-2","name":"","category":"Sofas","price":"10","stock":1}`,
		`{"id":"BAD-3","name":"Side Table","category":"Tables","price":"19.999","stock":1}`,
		`{"id":"BAD-4","name":"Chandelier","category":"Lighting","price":"123456789012.50","stock":1}`,
		`{"id":"RUG-1","name":"Wool Rug","category":"Rugs","price":"240","stock":0,"onSale":true,"discount":20}`,
	})

	records, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "SOFA-1", records[0].ID)
	assert.Equal(t, "RUG-1", records[1].ID)
}

func TestFileLoader_Load_MalformedJSON(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	path := createRawFeedFile(t, []string{
		`{"id":"SOFA-1","name":"Linen Sofa","category":"Sofas","price":"899.00","stock":3}`,
		`{not json`,
	})

	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2")
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := loader.Load(context.Background(), "/nonexistent/feed.jsonl.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open feed file")
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "plain.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"A"}`), 0o600))

	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}

func TestFileLoader_Load_EmptyFeed(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	path := createFeedFile(t, "empty.jsonl.gz", nil)

	records, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, records)
}
