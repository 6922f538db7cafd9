package auth

import (
	"context"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_user_store.go -package=mocks

// UserStore persists user records. Lookups report db.ErrNotFound when no user matches.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	DeleteByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) (models.User, error)
}
