package forum

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/notify"
)

// CommentTarget is the kind of document a comment is attached to.
type CommentTarget string

const (
	TargetQuestion CommentTarget = "question"
	TargetAnswer   CommentTarget = "answer"
)

type NewComment struct {
	Text            string
	CommentBy       string
	CommentDateTime time.Time
}

// CommentUpdate is the payload of the commentUpdate event. Result holds the
// populated parent document.
type CommentUpdate struct {
	Result any           `json:"result"`
	Type   CommentTarget `json:"type"`
}

// CommentOnQuestion attaches a comment to question rawID and returns the question.
func (s *Service) CommentOnQuestion(ctx context.Context, rawID string, in NewComment) (models.PopulatedQuestion, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return models.PopulatedQuestion{}, err
	}

	if _, err := s.stores.Questions.FindByID(ctx, id); err != nil {
		return models.PopulatedQuestion{}, s.fail("find question", err, ErrQuestionNotFound, ErrSaveComment)
	}

	comment, err := s.saveComment(ctx, in)
	if err != nil {
		return models.PopulatedQuestion{}, err
	}

	q, err := s.stores.Questions.AddComment(ctx, id, comment.ID)
	if err != nil {
		return models.PopulatedQuestion{}, s.fail("link comment", err, ErrQuestionNotFound, ErrSaveComment)
	}

	populated, err := s.populate(ctx, q)
	if err != nil {
		return models.PopulatedQuestion{}, s.fail("populate question", err, nil, ErrSaveComment)
	}

	s.publisher.Publish(notify.CommentUpdate, CommentUpdate{Result: populated, Type: TargetQuestion})
	return populated, nil
}

// CommentOnAnswer attaches a comment to answer rawID and returns the answer.
func (s *Service) CommentOnAnswer(ctx context.Context, rawID string, in NewComment) (models.PopulatedAnswer, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return models.PopulatedAnswer{}, err
	}

	found, err := s.stores.Answers.FindByIDs(ctx, []primitive.ObjectID{id})
	if err != nil {
		return models.PopulatedAnswer{}, s.fail("find answer", err, ErrAnswerNotFound, ErrSaveComment)
	}
	if len(found) == 0 {
		return models.PopulatedAnswer{}, ErrAnswerNotFound
	}

	comment, err := s.saveComment(ctx, in)
	if err != nil {
		return models.PopulatedAnswer{}, err
	}

	answer, err := s.stores.Answers.AddComment(ctx, id, comment.ID)
	if err != nil {
		return models.PopulatedAnswer{}, s.fail("link comment", err, ErrAnswerNotFound, ErrSaveComment)
	}

	populated, err := s.populateAnswer(ctx, answer)
	if err != nil {
		return models.PopulatedAnswer{}, s.fail("populate answer", err, nil, ErrSaveComment)
	}

	s.publisher.Publish(notify.CommentUpdate, CommentUpdate{Result: populated, Type: TargetAnswer})
	return populated, nil
}

func (s *Service) saveComment(ctx context.Context, in NewComment) (models.Comment, error) {
	comment, err := s.stores.Comments.Create(ctx, models.Comment{
		Text:            in.Text,
		CommentBy:       in.CommentBy,
		CommentDateTime: in.CommentDateTime,
	})
	if err != nil {
		return models.Comment{}, s.fail("save comment", err, nil, ErrSaveComment)
	}
	return comment, nil
}
