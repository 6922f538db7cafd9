package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

// MessageRepository persists chat messages. Messages are never updated or removed.
type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(store *Mongo) *MessageRepository {
	return &MessageRepository{coll: store.Messages}
}

func (r *MessageRepository) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return models.Message{}, translate("insert message", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return models.Message{}, err
	}
	msg.ID = id

	return msg, nil
}

// List returns every message ordered by msgDateTime, oldest first.
func (r *MessageRepository) List(ctx context.Context) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "msgDateTime", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate("find messages", err)
	}

	messages := make([]models.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, translate("decode messages", err)
	}

	return messages, nil
}
