// Package messaging stores chat messages and announces each new one to live subscribers.
package messaging

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/notify"
)

var ErrSaveMessage = errors.New("messaging: error when saving a message")

//go:generate go run go.uber.org/mock/mockgen -source=messaging.go -destination=../mocks/mock_message_store.go -package=mocks

type MessageStore interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
}

// MessageUpdate is the payload of the messageUpdate event.
type MessageUpdate struct {
	Msg models.Message `json:"msg"`
}

type Service struct {
	store     MessageStore
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewService(store MessageStore, publisher notify.Publisher, logger *zap.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// AddMessage persists an already validated message and publishes it.
func (s *Service) AddMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	saved, err := s.store.Create(ctx, msg)
	if err != nil {
		s.logger.Error("save message failed", zap.String("from", msg.MsgFrom), zap.Error(err))
		return models.Message{}, ErrSaveMessage
	}

	s.publisher.Publish(notify.MessageUpdate, MessageUpdate{Msg: saved})
	return saved, nil
}

// GetMessages returns every message, oldest first. Storage failures yield an empty list.
func (s *Service) GetMessages(ctx context.Context) []models.Message {
	messages, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("list messages failed", zap.Error(err))
		return []models.Message{}
	}
	if messages == nil {
		return []models.Message{}
	}

	slices.SortStableFunc(messages, func(a, b models.Message) int {
		return a.MsgDateTime.Compare(b.MsgDateTime)
	})
	return messages
}
