package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/wuwenbin0122/fakeso/internal/utils"
)

var (
	ErrNotFound  = errors.New("db: document not found")
	ErrDuplicate = errors.New("db: duplicate key")
)

// Mongo holds the client and one collection handle per entity.
type Mongo struct {
	Client    *mongo.Client
	Database  *mongo.Database
	Users     *mongo.Collection
	Messages  *mongo.Collection
	Questions *mongo.Collection
	Answers   *mongo.Collection
	Comments  *mongo.Collection
	Tags      *mongo.Collection
}

func NewMongo(ctx context.Context, cfg utils.MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo: database is required")
	}

	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(cfg.ConnectTimeout))
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		Client:    client,
		Database:  db,
		Users:     db.Collection("users"),
		Messages:  db.Collection("messages"),
		Questions: db.Collection("questions"),
		Answers:   db.Collection("answers"),
		Comments:  db.Collection("comments"),
		Tags:      db.Collection("tags"),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return m.Client.Disconnect(ctx)
}

// EnsureCollections creates the indexes the stores rely on. Username and tag name
// uniqueness is enforced here rather than in application code.
func (m *Mongo) EnsureCollections(ctx context.Context) error {
	if m == nil || m.Database == nil {
		return fmt.Errorf("mongo: database not initialised")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []struct {
		name  string
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{"user username", m.Users, mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"tag name", m.Tags, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{"message time", m.Messages, mongo.IndexModel{
			Keys: bson.D{{Key: "msgDateTime", Value: 1}, {Key: "_id", Value: 1}},
		}},
		{"question time", m.Questions, mongo.IndexModel{
			Keys: bson.D{{Key: "askDateTime", Value: -1}},
		}},
		{"question tags", m.Questions, mongo.IndexModel{
			Keys: bson.D{{Key: "tags", Value: 1}},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("mongo: ensure %s index: %w", idx.name, err)
		}
	}

	return nil
}

// Collections returns every entity collection keyed by its name.
func (m *Mongo) Collections() map[string]*mongo.Collection {
	return map[string]*mongo.Collection{
		m.Users.Name():     m.Users,
		m.Messages.Name():  m.Messages,
		m.Questions.Name(): m.Questions,
		m.Answers.Name():   m.Answers,
		m.Comments.Name():  m.Comments,
		m.Tags.Name():      m.Tags,
	}
}

// DropCollections removes every entity collection together with its indexes.
func (m *Mongo) DropCollections(ctx context.Context) error {
	for name, coll := range m.Collections() {
		if err := coll.Drop(ctx); err != nil {
			return fmt.Errorf("mongo: drop %s: %w", name, err)
		}
	}
	return nil
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return 10 * time.Second
}

// translate maps driver errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %v", op, ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func insertedID(res *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("mongo: unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}
