package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/amaretto/amaretto-backend/config"
	"github.com/amaretto/amaretto-backend/internal/app/repository"
	"github.com/amaretto/amaretto-backend/internal/app/service"
	"github.com/amaretto/amaretto-backend/internal/db"
	"github.com/amaretto/amaretto-backend/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> [--yes]")
	}

	filePath := os.Args[1]
	assumeYes := len(os.Args) > 2 && os.Args[2] == "--yes"

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	pool, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database pool:", err)
	}
	defer pool.Close()

	catalog := service.NewCatalogService(
		pool,
		repository.NewProductRepository(pool.DB()),
		repository.NewFileProductRepository(cfg.Catalog.FallbackFile),
		storage.BaseURLNormalizer(cfg.S3.BaseURL),
		cfg.Database.ProbeTimeout,
	)

	ctx := context.Background()
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	backend := catalog.Backend(ctx)
	fmt.Printf("Total products to import: %d (skipped rows: %d)\n", len(products), skipped)
	fmt.Printf("Target backend: %s\n", backend.Kind)

	if !assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	created, duplicates, failed := 0, 0, 0
	for _, row := range products {
		if _, err := catalog.CreateProduct(ctx, row.input); err != nil {
			var verr *service.ValidationError
			switch {
			case errors.Is(err, service.ErrDuplicateSlug):
				duplicates++
			case errors.As(err, &verr):
				fmt.Printf("  row %d: %v\n", row.line, verr)
				failed++
			default:
				log.Fatalf("Failed to import row %d: %v", row.line, err)
			}
			continue
		}
		created++
	}

	fmt.Println("Import completed!")
	fmt.Printf("  Created: %d\n", created)
	fmt.Printf("  Duplicate slugs skipped: %d\n", duplicates)
	fmt.Printf("  Invalid rows: %d\n", failed)
}
