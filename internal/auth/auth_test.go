package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/wuwenbin0122/fakeso/internal/auth"
	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/mocks"
	"github.com/wuwenbin0122/fakeso/internal/models"
)

var errDatabase = errors.New("database error")

func newService(t *testing.T) (*auth.Service, *mocks.MockUserStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUserStore(ctrl)
	return auth.NewService(store, bcrypt.MinCost, zaptest.NewLogger(t)), store
}

func storedUser(t *testing.T, username, password string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Password:   hash,
		DateJoined: time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, store := newService(t)
	id := primitive.NewObjectID()

	store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user models.User) (models.User, error) {
			assert.Equal(t, "user1", user.Username)
			assert.NotEqual(t, "password", user.Password)
			assert.True(t, auth.ComparePassword(user.Password, "password"))
			assert.False(t, user.DateJoined.IsZero())
			user.ID = id
			return user, nil
		})

	safe, err := svc.CreateUser(context.Background(), "user1", "password")
	require.NoError(t, err)
	assert.Equal(t, id, safe.ID)
	assert.Equal(t, "user1", safe.Username)
}

func TestCreateUserReportsAnyStoreFailureAlike(t *testing.T) {
	for name, storeErr := range map[string]error{
		"duplicate": db.ErrDuplicate,
		"generic":   errDatabase,
	} {
		t.Run(name, func(t *testing.T) {
			svc, store := newService(t)
			store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.User{}, storeErr)

			_, err := svc.CreateUser(context.Background(), "user1", "password")
			assert.ErrorIs(t, err, auth.ErrSaveUser)
		})
	}
}

func TestLogin(t *testing.T) {
	user := storedUser(t, "user1", "password")

	t.Run("matching credentials", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().FindByUsername(gomock.Any(), "user1").Return(user, nil)

		safe, err := svc.Login(context.Background(), models.Credentials{Username: "user1", Password: "password"})
		require.NoError(t, err)
		assert.Equal(t, user.Safe(), safe)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().FindByUsername(gomock.Any(), "user1").Return(user, nil)

		_, err := svc.Login(context.Background(), models.Credentials{Username: "user1", Password: "wrongpassword"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(models.User{}, db.ErrNotFound)

		_, err := svc.Login(context.Background(), models.Credentials{Username: "ghost", Password: "password"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().FindByUsername(gomock.Any(), "user1").Return(models.User{}, errDatabase)

		_, err := svc.Login(context.Background(), models.Credentials{Username: "user1", Password: "password"})
		assert.ErrorIs(t, err, auth.ErrLogin)
	})
}

func TestGetUserByUsername(t *testing.T) {
	user := storedUser(t, "user1", "password")

	svc, store := newService(t)
	gomock.InOrder(
		store.EXPECT().FindByUsername(gomock.Any(), "user1").Return(user, nil),
		store.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(models.User{}, db.ErrNotFound),
		store.EXPECT().FindByUsername(gomock.Any(), "user1").Return(models.User{}, errDatabase),
	)

	safe, err := svc.GetUserByUsername(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", safe.Username)

	_, err = svc.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = svc.GetUserByUsername(context.Background(), "user1")
	assert.ErrorIs(t, err, auth.ErrGetUser)
}

func TestDeleteUserByUsername(t *testing.T) {
	user := storedUser(t, "user1", "password")

	svc, store := newService(t)
	gomock.InOrder(
		store.EXPECT().DeleteByUsername(gomock.Any(), "user1").Return(user, nil),
		store.EXPECT().DeleteByUsername(gomock.Any(), "nonexistentuser").Return(models.User{}, db.ErrNotFound),
		store.EXPECT().DeleteByUsername(gomock.Any(), "user1").Return(models.User{}, errDatabase),
	)

	deleted, err := svc.DeleteUserByUsername(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, user.DateJoined, deleted.DateJoined)

	_, err = svc.DeleteUserByUsername(context.Background(), "nonexistentuser")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = svc.DeleteUserByUsername(context.Background(), "user1")
	assert.ErrorIs(t, err, auth.ErrDeleteUser)
}

func TestResetPassword(t *testing.T) {
	t.Run("stores the new hash", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().UpdatePassword(gomock.Any(), "user1", gomock.Any()).DoAndReturn(
			func(_ context.Context, username, hash string) (models.User, error) {
				assert.True(t, auth.ComparePassword(hash, "newPassword"))
				return models.User{ID: primitive.NewObjectID(), Username: username, Password: hash}, nil
			})

		safe, err := svc.ResetPassword(context.Background(), "user1", "newPassword")
		require.NoError(t, err)
		assert.Equal(t, "user1", safe.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().UpdatePassword(gomock.Any(), "nonexistentuser", gomock.Any()).Return(models.User{}, db.ErrNotFound)

		_, err := svc.ResetPassword(context.Background(), "nonexistentuser", "newPassword")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		svc, store := newService(t)
		store.EXPECT().UpdatePassword(gomock.Any(), "user1", gomock.Any()).Return(models.User{}, errDatabase)

		_, err := svc.ResetPassword(context.Background(), "user1", "newPassword")
		assert.ErrorIs(t, err, auth.ErrUpdateUser)
	})
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := auth.HashPassword("password", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := auth.HashPassword("password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, auth.ComparePassword(first, "password"))
	assert.False(t, auth.ComparePassword(first, "Password"))
	assert.False(t, auth.ComparePassword("", "password"))
}
