package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

type AnswerRepository struct {
	coll *mongo.Collection
}

func NewAnswerRepository(store *Mongo) *AnswerRepository {
	return &AnswerRepository{coll: store.Answers}
}

func (r *AnswerRepository) Create(ctx context.Context, answer models.Answer) (models.Answer, error) {
	answer.Comments = emptyIfNil(answer.Comments)

	res, err := r.coll.InsertOne(ctx, answer)
	if err != nil {
		return models.Answer{}, translate("insert answer", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return models.Answer{}, err
	}
	answer.ID = id

	return answer, nil
}

func (r *AnswerRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Answer, error) {
	return findByIDs(ctx, r.coll, ids, func(a models.Answer) primitive.ObjectID { return a.ID })
}

func (r *AnswerRepository) AddComment(ctx context.Context, id, commentID primitive.ObjectID) (models.Answer, error) {
	var answer models.Answer
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": commentID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&answer)
	return answer, translate("update answer", err)
}
