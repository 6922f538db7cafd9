package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

type TagRepository struct {
	coll *mongo.Collection
}

func NewTagRepository(store *Mongo) *TagRepository {
	return &TagRepository{coll: store.Tags}
}

func (r *TagRepository) List(ctx context.Context) ([]models.Tag, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, translate("find tags", err)
	}

	tags := make([]models.Tag, 0)
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, translate("decode tags", err)
	}
	return tags, nil
}

func (r *TagRepository) FindByName(ctx context.Context, name string) (models.Tag, error) {
	var tag models.Tag
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&tag)
	return tag, translate("find tag", err)
}

// FindOrCreate returns the tag named tag.Name, inserting it when absent.
// An existing tag keeps its description.
func (r *TagRepository) FindOrCreate(ctx context.Context, tag models.Tag) (models.Tag, error) {
	var stored models.Tag
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"name": tag.Name},
		bson.M{"$setOnInsert": bson.M{"name": tag.Name, "description": tag.Description}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	return stored, translate("upsert tag", err)
}

func (r *TagRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tag, error) {
	return findByIDs(ctx, r.coll, ids, func(t models.Tag) primitive.ObjectID { return t.ID })
}
