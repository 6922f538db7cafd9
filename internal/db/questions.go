package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

type QuestionRepository struct {
	coll *mongo.Collection
}

func NewQuestionRepository(store *Mongo) *QuestionRepository {
	return &QuestionRepository{coll: store.Questions}
}

func (r *QuestionRepository) Create(ctx context.Context, q models.Question) (models.Question, error) {
	q.Tags = emptyIfNil(q.Tags)
	q.Answers = emptyIfNil(q.Answers)
	q.Comments = emptyIfNil(q.Comments)
	q.Views = emptyIfNil(q.Views)
	q.UpVotes = emptyIfNil(q.UpVotes)
	q.DownVotes = emptyIfNil(q.DownVotes)

	res, err := r.coll.InsertOne(ctx, q)
	if err != nil {
		return models.Question{}, translate("insert question", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return models.Question{}, err
	}
	q.ID = id

	return q, nil
}

// List returns all questions, newest first.
func (r *QuestionRepository) List(ctx context.Context) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "askDateTime", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("find questions", err)
	}

	questions := make([]models.Question, 0)
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, translate("decode questions", err)
	}
	return questions, nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	var q models.Question
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	return q, translate("find question", err)
}

// AddView records username as a viewer; repeated views by the same user count once.
func (r *QuestionRepository) AddView(ctx context.Context, id primitive.ObjectID, username string) (models.Question, error) {
	return r.update(ctx, "add view", id, bson.M{"$addToSet": bson.M{"views": username}})
}

func (r *QuestionRepository) AddAnswer(ctx context.Context, id, answerID primitive.ObjectID) (models.Question, error) {
	return r.update(ctx, "add answer", id, bson.M{"$push": bson.M{"answers": answerID}})
}

func (r *QuestionRepository) AddComment(ctx context.Context, id, commentID primitive.ObjectID) (models.Question, error) {
	return r.update(ctx, "add comment", id, bson.M{"$push": bson.M{"comments": commentID}})
}

// ApplyVote toggles username's vote in a single pipeline update: voting twice the same
// way cancels the vote, voting the other way moves it.
func (r *QuestionRepository) ApplyVote(ctx context.Context, id primitive.ObjectID, username string, kind models.VoteKind) (models.Question, error) {
	same, other := "upVotes", "downVotes"
	switch kind {
	case models.Upvote:
	case models.Downvote:
		same, other = other, same
	default:
		return models.Question{}, fmt.Errorf("apply vote: unknown vote kind %q", kind)
	}

	field := func(name string) bson.M {
		return bson.M{"$ifNull": bson.A{"$" + name, bson.A{}}}
	}
	without := func(name string) bson.M {
		return bson.M{"$filter": bson.M{
			"input": field(name),
			"as":    "voter",
			"cond":  bson.M{"$ne": bson.A{"$$voter", username}},
		}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: same, Value: bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{username, field(same)}},
				without(same),
				bson.M{"$concatArrays": bson.A{field(same), bson.A{username}}},
			}}},
			{Key: other, Value: without(other)},
		}}},
	}

	var q models.Question
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	return q, translate("apply vote", err)
}

func (r *QuestionRepository) CountByTag(ctx context.Context, tagID primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"tags": tagID})
	return n, translate("count questions", err)
}

func (r *QuestionRepository) update(ctx context.Context, op string, id primitive.ObjectID, update bson.M) (models.Question, error) {
	var q models.Question
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	return q, translate(op, err)
}
