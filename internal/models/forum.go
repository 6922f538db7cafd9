package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tag struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
}

// TagCount pairs a tag name with the number of questions carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"qcnt"`
}

type Comment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text            string             `bson:"text" json:"text"`
	CommentBy       string             `bson:"commentBy" json:"commentBy"`
	CommentDateTime time.Time          `bson:"commentDateTime" json:"commentDateTime"`
}

// Answer references its comments by id; see PopulatedAnswer for the expanded form.
type Answer struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Text        string               `bson:"text" json:"text"`
	AnsBy       string               `bson:"ansBy" json:"ansBy"`
	AnsDateTime time.Time            `bson:"ansDateTime" json:"ansDateTime"`
	Comments    []primitive.ObjectID `bson:"comments" json:"comments"`
}

type PopulatedAnswer struct {
	ID          primitive.ObjectID `json:"_id"`
	Text        string             `json:"text"`
	AnsBy       string             `json:"ansBy"`
	AnsDateTime time.Time          `json:"ansDateTime"`
	Comments    []Comment          `json:"comments"`
}

// Question as stored: tags, answers and comments are id references.
type Question struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title       string               `bson:"title" json:"title"`
	Text        string               `bson:"text" json:"text"`
	Tags        []primitive.ObjectID `bson:"tags" json:"tags"`
	AskedBy     string               `bson:"askedBy" json:"askedBy"`
	AskDateTime time.Time            `bson:"askDateTime" json:"askDateTime"`
	Answers     []primitive.ObjectID `bson:"answers" json:"answers"`
	Views       []string             `bson:"views" json:"views"`
	UpVotes     []string             `bson:"upVotes" json:"upVotes"`
	DownVotes   []string             `bson:"downVotes" json:"downVotes"`
	Comments    []primitive.ObjectID `bson:"comments" json:"comments"`
}

// PopulatedQuestion is a question with its references replaced by documents.
type PopulatedQuestion struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Text        string             `json:"text"`
	Tags        []Tag              `json:"tags"`
	AskedBy     string             `json:"askedBy"`
	AskDateTime time.Time          `json:"askDateTime"`
	Answers     []PopulatedAnswer  `json:"answers"`
	Views       []string           `json:"views"`
	UpVotes     []string           `json:"upVotes"`
	DownVotes   []string           `json:"downVotes"`
	Comments    []Comment          `json:"comments"`
}

// VoteTally is the vote state of a question after a vote was applied.
type VoteTally struct {
	UpVotes   []string `json:"upVotes"`
	DownVotes []string `json:"downVotes"`
}

// VoteKind selects which tally a vote toggles.
type VoteKind string

const (
	Upvote   VoteKind = "upvote"
	Downvote VoteKind = "downvote"
)
