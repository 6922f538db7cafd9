package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

// UserRepository persists users in the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(store *Mongo) *UserRepository {
	return &UserRepository{coll: store.Users}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return models.User{}, translate("insert user", err)
	}

	id, err := insertedID(res)
	if err != nil {
		return models.User{}, err
	}
	user.ID = id

	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	return user, translate("find user", err)
}

func (r *UserRepository) DeleteByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.coll.FindOneAndDelete(ctx, bson.M{"username": username}).Decode(&user)
	return user, translate("delete user", err)
}

// UpdatePassword stores a new password hash and returns the updated document.
func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) (models.User, error) {
	var user models.User
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"password": passwordHash}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	return user, translate("update user", err)
}
