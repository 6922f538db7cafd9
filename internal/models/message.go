package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message. Messages are append-only.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Msg         string             `bson:"msg" json:"msg"`
	MsgFrom     string             `bson:"msgFrom" json:"msgFrom"`
	MsgDateTime time.Time          `bson:"msgDateTime" json:"msgDateTime"`
}
