// Package notify fans out named events to live websocket subscribers.
//
// Components receive a Publisher at construction time. Publishing never fails and
// never waits for subscribers: events are delivered at most once to whoever is
// connected at that moment and are not kept for late subscribers.
package notify

import (
	"encoding/json"
	"fmt"
)

// Event names published by the forum components.
const (
	MessageUpdate  = "messageUpdate"
	QuestionUpdate = "questionUpdate"
	AnswerUpdate   = "answerUpdate"
	CommentUpdate  = "commentUpdate"
	ViewsUpdate    = "viewsUpdate"
	VoteUpdate     = "voteUpdate"
)

//go:generate go run go.uber.org/mock/mockgen -source=notify.go -destination=../mocks/mock_publisher.go -package=mocks

// Publisher emits an event to every current subscriber.
type Publisher interface {
	Publish(event string, payload any)
}

// Broadcaster accepts an already encoded event frame.
type Broadcaster interface {
	Broadcast(frame []byte)
}

// Event is the wire envelope written to subscribers.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

func encode(event string, payload any) ([]byte, error) {
	frame, err := json.Marshal(Event{Name: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("notify: encode %s: %w", event, err)
	}
	return frame, nil
}
