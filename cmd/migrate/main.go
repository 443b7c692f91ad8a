package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/pageza/drinkbook/backend/config"
	"github.com/pageza/drinkbook/backend/internal/database"
	"github.com/pageza/drinkbook/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	list := flag.Bool("list", false, "List embedded migrations and exit")
	flag.Parse()

	if *list {
		migrations, err := database.Migrations()
		if err != nil {
			log.Fatalf("failed to read migrations: %v", err)
		}
		for _, m := range migrations {
			fmt.Printf("%s_%s\n", m.Version, m.Name)
		}
		return
	}

	logger, err := logging.NewCLI(false)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("DATABASE_URL is not set and configuration failed: %v", err)
		}
		if cfg.DBDriver != config.DriverPostgres {
			log.Fatalf("migrate only runs against postgres; sqlite databases migrate at server start")
		}
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *rollback {
		name, err := database.Rollback(ctx, db, logger)
		if errors.Is(err, database.ErrNoMigrations) {
			log.Fatal("No migrations to rollback")
		}
		if err != nil {
			log.Fatalf("failed to roll back: %v", err)
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	if err := database.ApplySQL(ctx, db, logger); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	fmt.Println("All migrations applied successfully.")
}
