package forum

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_forum_store.go -package=mocks

type QuestionStore interface {
	Create(ctx context.Context, q models.Question) (models.Question, error)
	List(ctx context.Context) ([]models.Question, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Question, error)
	AddView(ctx context.Context, id primitive.ObjectID, username string) (models.Question, error)
	AddAnswer(ctx context.Context, id, answerID primitive.ObjectID) (models.Question, error)
	AddComment(ctx context.Context, id, commentID primitive.ObjectID) (models.Question, error)
	ApplyVote(ctx context.Context, id primitive.ObjectID, username string, kind models.VoteKind) (models.Question, error)
	CountByTag(ctx context.Context, tagID primitive.ObjectID) (int64, error)
}

type AnswerStore interface {
	Create(ctx context.Context, answer models.Answer) (models.Answer, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Answer, error)
	AddComment(ctx context.Context, id, commentID primitive.ObjectID) (models.Answer, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
}

type TagStore interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByName(ctx context.Context, name string) (models.Tag, error)
	FindOrCreate(ctx context.Context, tag models.Tag) (models.Tag, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tag, error)
}

// Stores groups the collections the forum service works across.
type Stores struct {
	Questions QuestionStore
	Answers   AnswerStore
	Comments  CommentStore
	Tags      TagStore
}
