package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/drinkbook/backend/config"
	"github.com/pageza/drinkbook/backend/internal/database"
	"github.com/pageza/drinkbook/backend/internal/logging"
	"github.com/pageza/drinkbook/backend/internal/model"
)

//go:embed starter.json
var starterRecipes []byte

func main() {
	file := flag.String("file", "", "JSON array of recipes to import (legacy field names accepted)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger, err := logging.NewCLI(*verbose)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	data := starterRecipes
	if *file != "" {
		data, err = os.ReadFile(*file)
		if err != nil {
			logger.Fatal("failed to read recipe file", zap.String("file", *file), zap.Error(err))
		}
	}
	recipes, err := parseRecipes(data)
	if err != nil {
		logger.Fatal("failed to parse recipes", zap.Error(err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db, logger); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}
	if err := database.Seed(ctx, db); err != nil {
		logger.Fatal("failed to seed categories", zap.Error(err))
	}

	created, err := importRecipes(ctx, db, recipes, logger)
	if err != nil {
		logger.Fatal("failed to import recipes", zap.Error(err))
	}
	fmt.Printf("Imported %d of %d recipes\n", created, len(recipes))
}

// parseRecipes decodes a JSON array of possibly legacy records into the
// canonical schema.
func parseRecipes(data []byte) ([]model.Recipe, error) {
	var legacy []model.LegacyRecipe
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	recipes := make([]model.Recipe, 0, len(legacy))
	for _, l := range legacy {
		r, err := l.Canonical()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// importRecipes inserts recipes whose name is not taken yet and returns how
// many were created. Invalid records are skipped and logged.
func importRecipes(ctx context.Context, db *gorm.DB, recipes []model.Recipe, logger *zap.Logger) (int, error) {
	created := 0
	for _, r := range recipes {
		if len(r.Ingredients) == 0 || len(r.Instructions) == 0 || r.Name == "" || !model.IsCategory(r.Category) {
			logger.Warn("skipping invalid recipe", zap.String("name", r.Name), zap.String("category", r.Category))
			continue
		}

		var count int64
		if err := db.WithContext(ctx).Model(&model.Recipe{}).Where("name = ?", r.Name).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to check recipe %q: %w", r.Name, err)
		}
		if count > 0 {
			logger.Debug("recipe already present", zap.String("name", r.Name))
			continue
		}

		if err := db.WithContext(ctx).Create(&r).Error; err != nil {
			return created, fmt.Errorf("failed to create recipe %q: %w", r.Name, err)
		}
		logger.Info("recipe imported", zap.String("recipe_id", r.ID), zap.String("name", r.Name))
		created++
	}
	return created, nil
}
