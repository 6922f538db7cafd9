package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/wuwenbin0122/fakeso/internal/auth"
	"github.com/wuwenbin0122/fakeso/internal/db"
	"github.com/wuwenbin0122/fakeso/internal/forum"
	"github.com/wuwenbin0122/fakeso/internal/messaging"
	"github.com/wuwenbin0122/fakeso/internal/mocks"
	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/notify"
)

type testEnv struct {
	router    *gin.Engine
	users     *mocks.MockUserStore
	messages  *mocks.MockMessageStore
	questions *mocks.MockQuestionStore
	answers   *mocks.MockAnswerStore
	comments  *mocks.MockCommentStore
	tags      *mocks.MockTagStore
	publisher *mocks.MockPublisher
}

// setupTestRouter builds the real services on top of mocked stores. A store call that
// was not expected fails the test, so rejected requests prove nothing was persisted.
func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	logger := zaptest.NewLogger(t)
	env := &testEnv{
		users:     mocks.NewMockUserStore(ctrl),
		messages:  mocks.NewMockMessageStore(ctrl),
		questions: mocks.NewMockQuestionStore(ctrl),
		answers:   mocks.NewMockAnswerStore(ctrl),
		comments:  mocks.NewMockCommentStore(ctrl),
		tags:      mocks.NewMockTagStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}

	handler := NewHandler(
		auth.NewService(env.users, bcrypt.MinCost, logger),
		messaging.NewService(env.messages, env.publisher, logger),
		forum.NewService(forum.Stores{
			Questions: env.questions,
			Answers:   env.answers,
			Comments:  env.comments,
			Tags:      env.tags,
		}, env.publisher, logger),
		nil,
		logger,
	)

	env.router = NewRouter(logger)
	handler.RegisterRoutes(env.router)
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func storedUser(t *testing.T, username, password string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Password:   hash,
		DateJoined: time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestRootAndHealth(t *testing.T) {
	env := setupTestRouter(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	decodeBody(t, rec.Body.Bytes(), &health)
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestSignupRejectsInvalidBodies(t *testing.T) {
	bodies := map[string]any{
		"empty object":     map[string]any{},
		"missing password": map[string]any{"username": "user1"},
		"missing username": map[string]any{"password": "password"},
		"blank username":   map[string]any{"username": "   ", "password": "password"},
		"blank password":   map[string]any{"username": "user1", "password": " \t"},
		"numeric username": map[string]any{"username": 5, "password": "password"},
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			env := setupTestRouter(t)

			rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/signup", body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid user body", rec.Body.String())
		})
	}

	t.Run("not json", func(t *testing.T) {
		env := setupTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/user/signup", strings.NewReader("username=user1"))
		req.Header.Set("Content-Type", "application/json")

		rec := env.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid user body", rec.Body.String())
	})
}

func TestSignupReturnsSafeUser(t *testing.T) {
	env := setupTestRouter(t)
	id := primitive.NewObjectID()

	env.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user models.User) (models.User, error) {
			assert.NotEqual(t, "password", user.Password)
			user.ID = id
			return user, nil
		})

	rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/signup", map[string]string{
		"username": "user1",
		"password": "password",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeBody(t, rec.Body.Bytes(), &body)
	assert.Equal(t, id.Hex(), body["_id"])
	assert.Equal(t, "user1", body["username"])
	assert.NotContains(t, body, "password")

	joined, ok := body["dateJoined"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, joined)
	assert.NoError(t, err)
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := setupTestRouter(t)
	env.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.User{}, db.ErrDuplicate)

	rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/signup", map[string]string{
		"username": "user1",
		"password": "password",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Error when saving a user"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	user := storedUser(t, "user1", "password")

	t.Run("wrong password", func(t *testing.T) {
		env := setupTestRouter(t)
		env.users.EXPECT().FindByUsername(gomock.Any(), "user1").Return(user, nil)

		rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/login", map[string]string{
			"username": "user1",
			"password": "wrongpassword",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid username or password"}`, rec.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		env := setupTestRouter(t)
		env.users.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(models.User{}, db.ErrNotFound)

		rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/login", map[string]string{
			"username": "ghost",
			"password": "password",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid username or password"}`, rec.Body.String())
	})

	t.Run("success", func(t *testing.T) {
		env := setupTestRouter(t)
		env.users.EXPECT().FindByUsername(gomock.Any(), "user1").Return(user, nil)

		rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/login", map[string]string{
			"username": "user1",
			"password": "password",
		}))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		decodeBody(t, rec.Body.Bytes(), &body)
		assert.Equal(t, user.ID.Hex(), body["_id"])
		assert.NotContains(t, body, "password")
	})

	t.Run("blank body", func(t *testing.T) {
		env := setupTestRouter(t)

		rec := env.do(t, newJSONRequest(t, http.MethodPost, "/user/login", map[string]string{"username": "user1"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid user body", rec.Body.String())
	})
}

func TestGetUser(t *testing.T) {
	user := storedUser(t, "user1", "password")
	env := setupTestRouter(t)
	env.users.EXPECT().FindByUsername(gomock.Any(), "user1").Return(user, nil)
	env.users.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(models.User{}, db.ErrNotFound)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/user/getUser/user1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decodeBody(t, rec.Body.Bytes(), &body)
	assert.Equal(t, "user1", body["username"])
	assert.NotContains(t, body, "password")

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/user/getUser/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/user/getUser/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Username is required"}`, rec.Body.String())
}

func TestDeleteUser(t *testing.T) {
	user := storedUser(t, "user1", "password")
	env := setupTestRouter(t)
	env.users.EXPECT().DeleteByUsername(gomock.Any(), "user1").Return(user, nil)
	env.users.EXPECT().DeleteByUsername(gomock.Any(), "nonexistentuser").Return(models.User{}, db.ErrNotFound)

	rec := env.do(t, httptest.NewRequest(http.MethodDelete, "/user/deleteUser/user1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/user/deleteUser/nonexistentuser", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/user/deleteUser/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid user body", rec.Body.String())
}

func TestResetPassword(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		env := setupTestRouter(t)
		env.users.EXPECT().UpdatePassword(gomock.Any(), "nonexistentuser", gomock.Any()).Return(models.User{}, db.ErrNotFound)

		rec := env.do(t, newJSONRequest(t, http.MethodPatch, "/user/resetPassword", map[string]string{
			"username": "nonexistentuser",
			"password": "newPassword",
		}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String())
	})

	t.Run("existing user", func(t *testing.T) {
		env := setupTestRouter(t)
		user := storedUser(t, "user1", "password")
		env.users.EXPECT().UpdatePassword(gomock.Any(), "user1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, hash string) (models.User, error) {
				assert.True(t, auth.ComparePassword(hash, "newPassword"))
				user.Password = hash
				return user, nil
			})

		rec := env.do(t, newJSONRequest(t, http.MethodPatch, "/user/resetPassword", map[string]string{
			"username": "user1",
			"password": "newPassword",
		}))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		decodeBody(t, rec.Body.Bytes(), &body)
		assert.Equal(t, "user1", body["username"])
		assert.NotContains(t, body, "password")
	})

	t.Run("missing password", func(t *testing.T) {
		env := setupTestRouter(t)

		rec := env.do(t, newJSONRequest(t, http.MethodPatch, "/user/resetPassword", map[string]string{"username": "user1"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid user body", rec.Body.String())
	})
}

func TestAddMessageRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		body any
		want string
	}{
		{"missing messageToAdd", map[string]any{}, "Invalid request"},
		{"messageToAdd is a string", map[string]any{"messageToAdd": "hello"}, "Invalid request"},
		{"messageToAdd is null", map[string]any{"messageToAdd": nil}, "Invalid request"},
		{"messageToAdd is a number", map[string]any{"messageToAdd": 42}, "Invalid request"},
		{"messageToAdd is an array", map[string]any{"messageToAdd": []any{}}, "Invalid message"},
		{"invalid date", map[string]any{"messageToAdd": map[string]any{
			"msg": "Hello", "msgFrom": "User1", "msgDateTime": "not-a-date",
		}}, "Invalid message"},
		{"missing date", map[string]any{"messageToAdd": map[string]any{
			"msg": "Hello", "msgFrom": "User1",
		}}, "Invalid message"},
		{"blank msg", map[string]any{"messageToAdd": map[string]any{
			"msg": "  ", "msgFrom": "User1", "msgDateTime": "2024-06-04T10:00:00Z",
		}}, "Invalid message"},
		{"numeric sender", map[string]any{"messageToAdd": map[string]any{
			"msg": "Hello", "msgFrom": 7, "msgDateTime": "2024-06-04T10:00:00Z",
		}}, "Invalid message"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupTestRouter(t)

			rec := env.do(t, newJSONRequest(t, http.MethodPost, "/messaging/addMessage", tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestAddMessagePersistsAndPublishes(t *testing.T) {
	env := setupTestRouter(t)
	sent := time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)
	stored := models.Message{ID: primitive.NewObjectID(), Msg: "Hello", MsgFrom: "User1", MsgDateTime: sent}

	gomock.InOrder(
		env.messages.EXPECT().Create(gomock.Any(), models.Message{Msg: "Hello", MsgFrom: "User1", MsgDateTime: sent}).
			Return(stored, nil),
		env.publisher.EXPECT().Publish(notify.MessageUpdate, messaging.MessageUpdate{Msg: stored}),
	)

	rec := env.do(t, newJSONRequest(t, http.MethodPost, "/messaging/addMessage", map[string]any{
		"messageToAdd": map[string]any{"msg": "Hello", "msgFrom": "User1", "msgDateTime": "2024-06-04T10:00:00.000Z"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.Message
	decodeBody(t, rec.Body.Bytes(), &body)
	assert.Equal(t, stored.ID, body.ID)
	assert.True(t, sent.Equal(body.MsgDateTime))
}

func TestAddMessageStoreFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.messages.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Message{}, errors.New("insert failed"))

	rec := env.do(t, newJSONRequest(t, http.MethodPost, "/messaging/addMessage", map[string]any{
		"messageToAdd": map[string]any{"msg": "Hello", "msgFrom": "User1", "msgDateTime": "2024-06-04"},
	}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error when saving a message"}`, rec.Body.String())
}

func TestGetMessagesEmpty(t *testing.T) {
	env := setupTestRouter(t)
	env.messages.EXPECT().List(gomock.Any()).Return(nil, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/messaging/getMessages", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetMessagesStoreFailureIsEmpty(t *testing.T) {
	env := setupTestRouter(t)
	env.messages.EXPECT().List(gomock.Any()).Return(nil, errors.New("find failed"))

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/messaging/getMessages", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAddQuestionRejectsInvalidBody(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"title":       "How to navigate?",
			"text":        "Router question",
			"tags":        []map[string]string{{"name": "react", "description": ""}},
			"askedBy":     "user1",
			"askDateTime": "2024-01-02T03:04:05Z",
		}
	}

	mutations := map[string]func(map[string]any){
		"no tags":      func(b map[string]any) { b["tags"] = []map[string]string{} },
		"blank tag":    func(b map[string]any) { b["tags"] = []map[string]string{{"name": " "}} },
		"blank title":  func(b map[string]any) { b["title"] = "" },
		"long title":   func(b map[string]any) { b["title"] = strings.Repeat("x", 101) },
		"bad date":     func(b map[string]any) { b["askDateTime"] = "yesterday" },
		"missing user": func(b map[string]any) { delete(b, "askedBy") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			env := setupTestRouter(t)
			body := valid()
			mutate(body)

			rec := env.do(t, newJSONRequest(t, http.MethodPost, "/question/addQuestion", body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid question body", rec.Body.String())
		})
	}
}

func TestGetQuestionByIDErrors(t *testing.T) {
	env := setupTestRouter(t)
	qid := primitive.NewObjectID()
	env.questions.EXPECT().AddView(gomock.Any(), qid, "user1").Return(models.Question{}, db.ErrNotFound)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/question/getQuestionById/nope?username=user1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID format", rec.Body.String())

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/question/getQuestionById/"+qid.Hex()+"?username=user1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Question not found"}`, rec.Body.String())
}

func TestGetQuestionsEmpty(t *testing.T) {
	env := setupTestRouter(t)
	env.questions.EXPECT().List(gomock.Any()).Return(nil, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/question/getQuestion?order=active&search=react", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpvoteQuestion(t *testing.T) {
	env := setupTestRouter(t)
	qid := primitive.NewObjectID()
	env.questions.EXPECT().ApplyVote(gomock.Any(), qid, "user1", models.Upvote).
		Return(models.Question{ID: qid, UpVotes: []string{"user1"}}, nil)
	env.publisher.EXPECT().Publish(notify.VoteUpdate, gomock.Any())

	rec := env.do(t, newJSONRequest(t, http.MethodPost, "/question/upvoteQuestion", map[string]string{
		"qid":      qid.Hex(),
		"username": "user1",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"msg":"Question upvoted successfully","upVotes":["user1"],"downVotes":[]}`, rec.Body.String())

	rec = env.do(t, newJSONRequest(t, http.MethodPost, "/question/downvoteQuestion", map[string]string{"qid": qid.Hex()}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", rec.Body.String())
}

func TestAddAnswerRejectsInvalidAnswer(t *testing.T) {
	env := setupTestRouter(t)

	rec := env.do(t, newJSONRequest(t, http.MethodPost, "/answer/addAnswer", map[string]any{
		"qid": primitive.NewObjectID().Hex(),
		"ans": map[string]any{"text": "", "ansBy": "user2", "ansDateTime": "2024-01-02"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid answer", rec.Body.String())
}

func TestAddCommentValidation(t *testing.T) {
	comment := map[string]any{"text": "nice", "commentBy": "user3", "commentDateTime": "2024-01-02T03:04:05Z"}

	cases := []struct {
		name string
		body map[string]any
		want string
	}{
		{"unknown type", map[string]any{"id": primitive.NewObjectID().Hex(), "type": "tag", "comment": comment}, "Invalid request"},
		{"missing comment", map[string]any{"id": primitive.NewObjectID().Hex(), "type": "question"}, "Invalid request"},
		{"comment is an array", map[string]any{"id": primitive.NewObjectID().Hex(), "type": "question", "comment": []any{}}, "Invalid comment"},
		{"blank text", map[string]any{"id": primitive.NewObjectID().Hex(), "type": "answer", "comment": map[string]any{
			"text": "", "commentBy": "user3", "commentDateTime": "2024-01-02T03:04:05Z",
		}}, "Invalid comment"},
		{"malformed id", map[string]any{"id": "123", "type": "question", "comment": comment}, "Invalid ID format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupTestRouter(t)

			rec := env.do(t, newJSONRequest(t, http.MethodPost, "/comment/addComment", tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestGetTagByName(t *testing.T) {
	env := setupTestRouter(t)
	react := models.Tag{ID: primitive.NewObjectID(), Name: "react", Description: "UI library"}
	env.tags.EXPECT().FindByName(gomock.Any(), "react").Return(react, nil)
	env.tags.EXPECT().FindByName(gomock.Any(), "ghost").Return(models.Tag{}, db.ErrNotFound)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/tag/getTagByName/react", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var tag models.Tag
	decodeBody(t, rec.Body.Bytes(), &tag)
	assert.Equal(t, react, tag)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/tag/getTagByName/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Tag not found"}`, rec.Body.String())
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
