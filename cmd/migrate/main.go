package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/campaign-inventory/dashboard/internal/db"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "./migrations", "migrations directory")
	reset := flag.Bool("reset", false, "roll back every migration before applying (disposable databases only)")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if *reset {
		if err := db.Rebuild(databaseURL, *dir); err != nil {
			log.Fatalf("rebuild: %v", err)
		}
		return
	}
	if err := db.Migrate(databaseURL, *dir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}
