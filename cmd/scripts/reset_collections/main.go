package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	defer func() { _ = store.Close(ctx) }()

	if err := store.DropCollections(ctx); err != nil {
		log.Fatalf("drop collections: %v", err)
	}
	if err := store.EnsureCollections(ctx); err != nil {
		log.Fatalf("recreate indexes: %v", err)
	}

	log.Printf("collections in %s recreated", cfg.Mongo.Database)
}
