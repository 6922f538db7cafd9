package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(store *Mongo) *CommentRepository {
	return &CommentRepository{coll: store.Comments}
}

func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	res, err := r.coll.InsertOne(ctx, comment)
	if err != nil {
		return models.Comment{}, translate("insert comment", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return models.Comment{}, err
	}
	comment.ID = id

	return comment, nil
}

func (r *CommentRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	return findByIDs(ctx, r.coll, ids, func(c models.Comment) primitive.ObjectID { return c.ID })
}
