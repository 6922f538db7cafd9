package forum

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/notify"
)

type NewAnswer struct {
	Text        string
	AnsBy       string
	AnsDateTime time.Time
}

// AnswerUpdate is the payload of the answerUpdate event.
type AnswerUpdate struct {
	QID    primitive.ObjectID     `json:"qid"`
	Answer models.PopulatedAnswer `json:"answer"`
}

// AddAnswer stores the answer and links it to question rawQID.
func (s *Service) AddAnswer(ctx context.Context, rawQID string, in NewAnswer) (models.PopulatedAnswer, error) {
	qid, err := ParseID(rawQID)
	if err != nil {
		return models.PopulatedAnswer{}, err
	}

	if _, err := s.stores.Questions.FindByID(ctx, qid); err != nil {
		return models.PopulatedAnswer{}, s.fail("find question", err, ErrQuestionNotFound, ErrSaveAnswer)
	}

	answer, err := s.stores.Answers.Create(ctx, models.Answer{
		Text:        in.Text,
		AnsBy:       in.AnsBy,
		AnsDateTime: in.AnsDateTime,
		Comments:    []primitive.ObjectID{},
	})
	if err != nil {
		return models.PopulatedAnswer{}, s.fail("save answer", err, nil, ErrSaveAnswer)
	}

	if _, err := s.stores.Questions.AddAnswer(ctx, qid, answer.ID); err != nil {
		return models.PopulatedAnswer{}, s.fail("link answer", err, ErrQuestionNotFound, ErrSaveAnswer)
	}

	populated, err := s.populateAnswer(ctx, answer)
	if err != nil {
		return models.PopulatedAnswer{}, s.fail("populate answer", err, nil, ErrSaveAnswer)
	}

	s.publisher.Publish(notify.AnswerUpdate, AnswerUpdate{QID: qid, Answer: populated})
	return populated, nil
}
