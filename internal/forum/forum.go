// Package forum implements questions, answers, comments and tags. Every write
// publishes an event describing the new state.
package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/notify"
)

var (
	ErrInvalidID        = errors.New("forum: invalid id")
	ErrQuestionNotFound = errors.New("forum: question not found")
	ErrAnswerNotFound   = errors.New("forum: answer not found")
	ErrTagNotFound      = errors.New("forum: tag not found")

	ErrSaveQuestion   = errors.New("forum: error when saving question")
	ErrFetchQuestions = errors.New("forum: error when fetching questions")
	ErrFetchQuestion  = errors.New("forum: error when fetching question by id")
	ErrVote           = errors.New("forum: error when updating votes")
	ErrSaveAnswer     = errors.New("forum: error when adding answer")
	ErrSaveComment    = errors.New("forum: error when adding comment")
	ErrFetchTags      = errors.New("forum: error when fetching tags")
)

type Service struct {
	stores    Stores
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewService(stores Stores, publisher notify.Publisher, logger *zap.Logger) *Service {
	return &Service{stores: stores, publisher: publisher, logger: logger}
}

// ParseID converts a hex object id supplied by a client.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// fail logs err and returns the public sentinel for the operation. A db.ErrNotFound
// becomes notFound when one is given.
func (s *Service) fail(op string, err, notFound, public error) error {
	if notFound != nil && errors.Is(err, db.ErrNotFound) {
		return notFound
	}
	s.logger.Error(op+" failed", zap.Error(err))
	return public
}

// populate replaces the question's references with the referenced documents.
func (s *Service) populate(ctx context.Context, q models.Question) (models.PopulatedQuestion, error) {
	tags, err := s.stores.Tags.FindByIDs(ctx, q.Tags)
	if err != nil {
		return models.PopulatedQuestion{}, fmt.Errorf("populate tags: %w", err)
	}

	answers, err := s.stores.Answers.FindByIDs(ctx, q.Answers)
	if err != nil {
		return models.PopulatedQuestion{}, fmt.Errorf("populate answers: %w", err)
	}

	populatedAnswers := make([]models.PopulatedAnswer, 0, len(answers))
	for _, a := range answers {
		pa, err := s.populateAnswer(ctx, a)
		if err != nil {
			return models.PopulatedQuestion{}, err
		}
		populatedAnswers = append(populatedAnswers, pa)
	}

	comments, err := s.stores.Comments.FindByIDs(ctx, q.Comments)
	if err != nil {
		return models.PopulatedQuestion{}, fmt.Errorf("populate comments: %w", err)
	}

	return models.PopulatedQuestion{
		ID:          q.ID,
		Title:       q.Title,
		Text:        q.Text,
		Tags:        nonNil(tags),
		AskedBy:     q.AskedBy,
		AskDateTime: q.AskDateTime,
		Answers:     populatedAnswers,
		Views:       nonNil(q.Views),
		UpVotes:     nonNil(q.UpVotes),
		DownVotes:   nonNil(q.DownVotes),
		Comments:    nonNil(comments),
	}, nil
}

func (s *Service) populateAnswer(ctx context.Context, a models.Answer) (models.PopulatedAnswer, error) {
	comments, err := s.stores.Comments.FindByIDs(ctx, a.Comments)
	if err != nil {
		return models.PopulatedAnswer{}, fmt.Errorf("populate answer comments: %w", err)
	}

	return models.PopulatedAnswer{
		ID:          a.ID,
		Text:        a.Text,
		AnsBy:       a.AnsBy,
		AnsDateTime: a.AnsDateTime,
		Comments:    nonNil(comments),
	}, nil
}

func nonNil[T any](s []T) []T {
	return lo.Ternary(s == nil, []T{}, s)
}
