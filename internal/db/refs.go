package db

import (
	"context"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// findByIDs loads the documents referenced by ids, returned in the order of ids.
// Dangling references are skipped.
func findByIDs[T any](ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID, idOf func(T) primitive.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate("find "+coll.Name(), err)
	}

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate("decode "+coll.Name(), err)
	}

	byID := lo.KeyBy(docs, idOf)
	return lo.FilterMap(ids, func(id primitive.ObjectID, _ int) (T, bool) {
		doc, ok := byID[id]
		return doc, ok
	}), nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
