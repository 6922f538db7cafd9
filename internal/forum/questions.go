package forum

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/notify"
)

// NewQuestion is a validated question submission. Tags are referenced by name and
// created on first use.
type NewQuestion struct {
	Title       string
	Text        string
	AskedBy     string
	AskDateTime time.Time
	Tags        []models.Tag
}

// VoteUpdate is the payload of the voteUpdate event.
type VoteUpdate struct {
	QID       primitive.ObjectID `json:"qid"`
	UpVotes   []string           `json:"upVotes"`
	DownVotes []string           `json:"downVotes"`
}

func (s *Service) AddQuestion(ctx context.Context, in NewQuestion) (models.PopulatedQuestion, error) {
	tags := lo.UniqBy(in.Tags, func(t models.Tag) string { return strings.TrimSpace(t.Name) })

	tagIDs := make([]primitive.ObjectID, 0, len(tags))
	for _, tag := range tags {
		stored, err := s.stores.Tags.FindOrCreate(ctx, models.Tag{
			Name:        strings.TrimSpace(tag.Name),
			Description: tag.Description,
		})
		if err != nil {
			return models.PopulatedQuestion{}, s.fail("resolve tag", err, nil, ErrSaveQuestion)
		}
		tagIDs = append(tagIDs, stored.ID)
	}

	q, err := s.stores.Questions.Create(ctx, models.Question{
		Title:       in.Title,
		Text:        in.Text,
		Tags:        lo.Uniq(tagIDs),
		AskedBy:     in.AskedBy,
		AskDateTime: in.AskDateTime,
		Answers:     []primitive.ObjectID{},
		Views:       []string{},
		UpVotes:     []string{},
		DownVotes:   []string{},
		Comments:    []primitive.ObjectID{},
	})
	if err != nil {
		return models.PopulatedQuestion{}, s.fail("save question", err, nil, ErrSaveQuestion)
	}

	populated, err := s.populate(ctx, q)
	if err != nil {
		return models.PopulatedQuestion{}, s.fail("populate question", err, nil, ErrSaveQuestion)
	}

	s.publisher.Publish(notify.QuestionUpdate, populated)
	return populated, nil
}

// GetQuestions lists questions matching search, arranged by order.
func (s *Service) GetQuestions(ctx context.Context, order Order, search string) ([]models.PopulatedQuestion, error) {
	questions, err := s.stores.Questions.List(ctx)
	if err != nil {
		return nil, s.fail("list questions", err, nil, ErrFetchQuestions)
	}

	populated := make([]models.PopulatedQuestion, 0, len(questions))
	for _, q := range questions {
		pq, err := s.populate(ctx, q)
		if err != nil {
			return nil, s.fail("populate question", err, nil, ErrFetchQuestions)
		}
		populated = append(populated, pq)
	}

	filter := ParseSearch(search)
	matching := lo.Filter(populated, func(q models.PopulatedQuestion, _ int) bool {
		return filter.Matches(q)
	})

	return order.Apply(matching), nil
}

// GetQuestionByID returns the question and, when username is set, records the view.
func (s *Service) GetQuestionByID(ctx context.Context, rawID, username string) (models.PopulatedQuestion, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return models.PopulatedQuestion{}, err
	}

	var q models.Question
	if strings.TrimSpace(username) == "" {
		q, err = s.stores.Questions.FindByID(ctx, id)
	} else {
		q, err = s.stores.Questions.AddView(ctx, id, username)
	}
	if err != nil {
		return models.PopulatedQuestion{}, s.fail("fetch question", err, ErrQuestionNotFound, ErrFetchQuestion)
	}

	populated, err := s.populate(ctx, q)
	if err != nil {
		return models.PopulatedQuestion{}, s.fail("populate question", err, nil, ErrFetchQuestion)
	}

	s.publisher.Publish(notify.ViewsUpdate, populated)
	return populated, nil
}

// Vote toggles username's vote on the question.
func (s *Service) Vote(ctx context.Context, rawID, username string, kind models.VoteKind) (models.VoteTally, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return models.VoteTally{}, err
	}

	q, err := s.stores.Questions.ApplyVote(ctx, id, username, kind)
	if err != nil {
		return models.VoteTally{}, s.fail("apply vote", err, ErrQuestionNotFound, ErrVote)
	}

	tally := models.VoteTally{UpVotes: nonNil(q.UpVotes), DownVotes: nonNil(q.DownVotes)}
	s.publisher.Publish(notify.VoteUpdate, VoteUpdate{QID: q.ID, UpVotes: tally.UpVotes, DownVotes: tally.DownVotes})
	return tally, nil
}
