//go:build ignore

// Writes a small gzipped SKU export for cmd/seed:
//
//	go run scripts/generate_sample_catalog.go
//	go run ./cmd/seed data/catalog/sample_skus.csv.gz
package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type sku struct {
	cover, name, brand, productID string
	stock                         int
	variant                       string
}

func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	// Rows sharing a cover photo become variants of one product.
	skus := []sku{
		{"images.example.com/nordwand/101/cover.jpg", "Ivory Linen", "Nordwand", "101", 12, "images.example.com/nordwand/101/ivory.jpg"},
		{"images.example.com/nordwand/101/cover.jpg", "Sage Linen", "Nordwand", "101", 8, "images.example.com/nordwand/101/sage.jpg"},
		{"images.example.com/nordwand/101/cover.jpg", "Slate Linen", "Nordwand", "101", 0, "images.example.com/nordwand/101/slate.jpg"},
		{"https://images.example.com/atelier/220/cover.jpg", "Terracotta Arch", "Atelier Muro", "220", 15, "https://images.example.com/atelier/220/terracotta.jpg"},
		{"https://images.example.com/atelier/220/cover.jpg", "Olive Arch", "Atelier Muro", "220", 4, "https://images.example.com/atelier/220/olive.jpg"},
		{"images.example.com/kembang/305/cover.jpg", "Batik Parang", "Kembang", "305", 20, "images.example.com/kembang/305/parang.jpg"},
		{"images.example.com/kembang/306/cover.jpg", "Test Swatch", "Kembang", "306", 1, ""},
	}

	filePath := filepath.Join(dataDir, "sample_skus.csv.gz")
	if err := createCatalogFile(filePath, skus); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d rows\n", filePath, len(skus))
	fmt.Println("\nExpected import:")
	fmt.Println("  - Nordwand Series 101       (3 variants, stock 20)")
	fmt.Println("  - Atelier Muro Series 220   (2 variants, stock 19)")
	fmt.Println("  - Kembang Series 305        (1 variant, stock 20)")
	fmt.Println("  - Kembang Series 306_test   (1 variant, stock 1)")
}

func createCatalogFile(filePath string, skus []sku) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write([]string{"cover_product_photo", "name", "brand", "product_id", "stock", "variant_photo"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range skus {
		if err := w.Write([]string{s.cover, s.name, s.brand, s.productID, strconv.Itoa(s.stock), s.variant}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
