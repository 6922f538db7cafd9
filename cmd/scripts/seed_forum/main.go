package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/auth"
	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/forum"
	"github.com/wuwenbin0122/fakeso/internal/messaging"
	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/utils"
)

type seedAnswer struct {
	text  string
	by    string
	after time.Duration
}

type seedQuestion struct {
	title   string
	text    string
	tags    []models.Tag
	askedBy string
	asked   time.Time
	answers []seedAnswer
}

// logPublisher records events instead of delivering them; nobody is subscribed
// while the seed runs.
type logPublisher struct {
	logger *zap.Logger
}

func (p logPublisher) Publish(event string, _ any) {
	p.logger.Debug("event", zap.String("name", event))
}

func main() {
	_ = godotenv.Load()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, err := db.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	defer func() { _ = store.Close(ctx) }()

	if err := store.EnsureCollections(ctx); err != nil {
		log.Fatalf("ensure collections: %v", err)
	}

	publisher := logPublisher{logger: logger}
	users := auth.NewService(db.NewUserRepository(store), cfg.BcryptCost, logger)
	messages := messaging.NewService(db.NewMessageRepository(store), publisher, logger)
	forumService := forum.NewService(forum.Stores{
		Questions: db.NewQuestionRepository(store),
		Answers:   db.NewAnswerRepository(store),
		Comments:  db.NewCommentRepository(store),
		Tags:      db.NewTagRepository(store),
	}, publisher, logger)

	for _, name := range []string{"sana", "ihba001", "saltyPeter", "monkeyABC", "hamkalo", "azad"} {
		if _, err := users.CreateUser(ctx, name, name+"-password"); err != nil {
			if errors.Is(err, auth.ErrSaveUser) {
				log.Printf("user %s already present, skipping", name)
				continue
			}
			log.Fatalf("create user %s: %v", name, err)
		}
	}

	react := models.Tag{Name: "react", Description: "React is a JavaScript library for building user interfaces."}
	javascript := models.Tag{Name: "javascript", Description: "JavaScript is the programming language of the web."}
	android := models.Tag{Name: "android-studio", Description: "Android Studio is the official IDE for Android development."}
	storage := models.Tag{Name: "shared-preferences", Description: "SharedPreferences stores small amounts of key-value data on Android."}

	base := time.Date(2022, time.January, 20, 3, 0, 0, 0, time.UTC)
	questions := []seedQuestion{
		{
			title:   "Programmatically navigate using React router",
			text:    "the alert shows the proper index for the li clicked, and when I alert the variable within the last function I'm calling, moveToNextImage(stepClicked), the same value shows but the animation isn't happening.",
			tags:    []models.Tag{react, javascript},
			askedBy: "saltyPeter",
			asked:   base,
			answers: []seedAnswer{
				{"React Router is mostly a wrapper around the history library.", "hamkalo", 25 * time.Hour},
				{"On my end, I like to have a single history object that I can carry even outside components.", "azad", 50 * time.Hour},
			},
		},
		{
			title:   "android studio save string shared preference, start activity and load the saved string",
			text:    "I am using bottom navigation view but am using custom navigation, so my fragments are not recreated every time i switch to a different view.",
			tags:    []models.Tag{android, storage, javascript},
			askedBy: "ihba001",
			asked:   base.Add(24 * 30 * time.Hour),
			answers: []seedAnswer{
				{"Consider using apply() instead; commit writes its data to persistent storage immediately.", "sana", 30 * time.Hour},
			},
		},
		{
			title:   "Object storage for a web application",
			text:    "I am currently working on a website where, roughly 40 million documents and images should be served to its users.",
			tags:    []models.Tag{storage},
			askedBy: "monkeyABC",
			asked:   base.Add(24 * 60 * time.Hour),
		},
	}

	for _, q := range questions {
		created, err := forumService.AddQuestion(ctx, forum.NewQuestion{
			Title:       q.title,
			Text:        q.text,
			AskedBy:     q.askedBy,
			AskDateTime: q.asked,
			Tags:        q.tags,
		})
		if err != nil {
			log.Fatalf("add question %q: %v", q.title, err)
		}

		for _, a := range q.answers {
			if _, err := forumService.AddAnswer(ctx, created.ID.Hex(), forum.NewAnswer{
				Text:        a.text,
				AnsBy:       a.by,
				AnsDateTime: q.asked.Add(a.after),
			}); err != nil {
				log.Fatalf("add answer to %q: %v", q.title, err)
			}
		}
	}

	if _, err := messages.AddMessage(ctx, models.Message{
		Msg:         "Welcome to the community chat",
		MsgFrom:     "sana",
		MsgDateTime: base,
	}); err != nil {
		log.Fatalf("add message: %v", err)
	}

	log.Printf("seeded %d questions", len(questions))
}
