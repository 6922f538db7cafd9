package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/models"
)

var (
	ErrSaveUser           = errors.New("auth: error when saving a user")
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrLogin              = errors.New("auth: error during login")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrGetUser            = errors.New("auth: error when retrieving user")
	ErrDeleteUser         = errors.New("auth: error when deleting user")
	ErrUpdateUser         = errors.New("auth: error when updating user")
)

// Service manages user accounts. Every user it returns is already a SafeUser.
type Service struct {
	store  UserStore
	cost   int
	logger *zap.Logger
	now    func() time.Time

	newTimingHash func(cost int) (string, error)
	dummyOnce     sync.Once
	dummyHash     string
}

func NewService(store UserStore, cost int, logger *zap.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Service{
		store:  store,
		cost:   cost,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },

		newTimingHash: randomHash,
	}
}

// CreateUser stores a new account with a hashed password. Duplicate usernames and
// other storage failures are reported alike as ErrSaveUser.
func (s *Service) CreateUser(ctx context.Context, username, password string) (models.SafeUser, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return models.SafeUser{}, ErrSaveUser
	}

	user, err := s.store.Create(ctx, models.User{
		Username:   username,
		Password:   hash,
		DateJoined: s.now(),
	})
	if err != nil {
		s.logger.Warn("save user failed", zap.String("username", username), zap.Error(err))
		return models.SafeUser{}, ErrSaveUser
	}

	return user.Safe(), nil
}

func (s *Service) Login(ctx context.Context, creds models.Credentials) (models.SafeUser, error) {
	user, err := s.store.FindByUsername(ctx, creds.Username)
	switch {
	case errors.Is(err, db.ErrNotFound):
		ComparePassword(s.timingHash(), creds.Password)
		return models.SafeUser{}, ErrInvalidCredentials
	case err != nil:
		s.logger.Error("login lookup failed", zap.String("username", creds.Username), zap.Error(err))
		return models.SafeUser{}, ErrLogin
	}

	if !ComparePassword(user.Password, creds.Password) {
		return models.SafeUser{}, ErrInvalidCredentials
	}

	return user.Safe(), nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (models.SafeUser, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return models.SafeUser{}, s.storeError("get user", username, err, ErrGetUser)
	}
	return user.Safe(), nil
}

func (s *Service) DeleteUserByUsername(ctx context.Context, username string) (models.SafeUser, error) {
	user, err := s.store.DeleteByUsername(ctx, username)
	if err != nil {
		return models.SafeUser{}, s.storeError("delete user", username, err, ErrDeleteUser)
	}
	return user.Safe(), nil
}

// ResetPassword replaces the user's password and returns the updated record.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword string) (models.SafeUser, error) {
	hash, err := HashPassword(newPassword, s.cost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return models.SafeUser{}, ErrUpdateUser
	}

	user, err := s.store.UpdatePassword(ctx, username, hash)
	if err != nil {
		return models.SafeUser{}, s.storeError("reset password", username, err, ErrUpdateUser)
	}
	return user.Safe(), nil
}

func (s *Service) storeError(op, username string, err, fallback error) error {
	if errors.Is(err, db.ErrNotFound) {
		return ErrUserNotFound
	}
	s.logger.Error(op+" failed", zap.String("username", username), zap.Error(err))
	return fallback
}

func (s *Service) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.newTimingHash(s.cost)
		if err != nil {
			s.logger.Warn("generate timing hash failed; using fixed hash", zap.Error(err))
			hash = fallbackTimingHash
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
