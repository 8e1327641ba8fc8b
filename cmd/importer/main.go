package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bookworm/internal/config"
	"bookworm/internal/db"
	"bookworm/internal/importer"
	cartrepo "bookworm/internal/repository/cart"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to cart lines CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, cartrepo.NewPostgres(pool))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d cart partitions in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
