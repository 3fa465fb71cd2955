package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"decor-shop/internal/catalog"
	"decor-shop/internal/model"

	"github.com/shopspring/decimal"
)

// Sample feeds for local development. SOFA-OAK appears in both files; the
// second feed's record wins on import, so its price drops to 749.00 and it
// goes on sale.
var feeds = map[string][]model.ProductRequest{
	"living-room.jsonl.gz": {
		{ID: "SOFA-OAK", Name: "Oak Frame Sofa", Category: "sofas", Price: decimal.RequireFromString("899.00"), Stock: 4},
		{ID: "CHAIR-VELVET", Name: "Velvet Armchair", Category: "chairs", Price: decimal.RequireFromString("249.50"), Stock: 12, OnSale: true, Discount: 20},
		{ID: "TABLE-WALNUT", Name: "Walnut Coffee Table", Category: "tables", Price: decimal.RequireFromString("329.00"), Stock: 7},
		{ID: "LAMP-BRASS", Name: "Brass Floor Lamp", Category: "lighting", Price: decimal.RequireFromString("60.00"), Stock: 25},
	},
	"seasonal.jsonl.gz": {
		{ID: "SOFA-OAK", Name: "Oak Frame Sofa", Category: "sofas", Price: decimal.RequireFromString("749.00"), Stock: 4, OnSale: true, Discount: 10},
		{ID: "RUG-WOOL", Name: "Hand-Woven Wool Rug", Category: "rugs", Price: decimal.RequireFromString("189.99"), Stock: 9},
		{ID: "VASE-CERAMIC", Name: "Ceramic Vase", Category: "decor", Price: decimal.RequireFromString("34.90"), Stock: 40, OnSale: true, Discount: 15},
		{ID: "MIRROR-ARCH", Name: "Arched Wall Mirror", Category: "decor", Price: decimal.RequireFromString("119.00"), Stock: 0},
	},
}

func main() {
	dataDir := flag.String("out", "data/feeds", "directory to write sample feeds into")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	for filename, records := range feeds {
		filePath := filepath.Join(*dataDir, filename)

		if err := writeFeedFile(filePath, records); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(records))
	}

	fmt.Println("\nImport with:")
	fmt.Printf("  CATALOG_FEED_PATHS=%s,%s\n",
		filepath.Join(*dataDir, "living-room.jsonl.gz"),
		filepath.Join(*dataDir, "seasonal.jsonl.gz"))
}

func writeFeedFile(filePath string, records []model.ProductRequest) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := catalog.WriteFeed(file, records); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}
