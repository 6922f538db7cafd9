package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := utils.LoadConfig()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	store, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		panic(err)
	}
	defer func() { _ = store.Close(ctx) }()

	collections := store.Collections()
	names := lo.Keys(collections)
	slices.Sort(names)

	fmt.Printf("database %s:\n", cfg.Mongo.Database)
	for _, name := range names {
		coll := collections[name]

		count, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			panic(err)
		}

		specs, err := coll.Indexes().ListSpecifications(ctx)
		if err != nil {
			panic(err)
		}
		indexes := lo.Map(specs, func(spec *mongo.IndexSpecification, _ int) string {
			if spec.Unique != nil && *spec.Unique {
				return spec.Name + " (unique)"
			}
			return spec.Name
		})

		fmt.Printf("- %s: %d documents, indexes %v\n", name, count, indexes)
	}
}
