package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/auth"
	"github.com/wuwenbin0122/fakeso/internal/forum"
	"github.com/wuwenbin0122/fakeso/internal/messaging"
	"github.com/wuwenbin0122/fakeso/internal/models"
)

// SocketServer upgrades a request into a live event subscription.
type SocketServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	users    *auth.Service
	messages *messaging.Service
	forum    *forum.Service
	socket   SocketServer
	logger   *zap.Logger
}

// NewHandler wires the services into HTTP routes. socket may be nil, in which case
// no /socket route is registered.
func NewHandler(users *auth.Service, messages *messaging.Service, forumService *forum.Service, socket SocketServer, logger *zap.Logger) *Handler {
	return &Handler{
		users:    users,
		messages: messages,
		forum:    forumService,
		socket:   socket,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "hello world")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if h.socket != nil {
		router.GET("/socket", func(c *gin.Context) {
			h.socket.ServeWS(c.Writer, c.Request)
		})
	}

	userGroup := router.Group("/user")
	userGroup.POST("/signup", h.handleSignup)
	userGroup.POST("/login", h.handleLogin)
	userGroup.GET("/getUser/", h.handleGetUser)
	userGroup.GET("/getUser/:username", h.handleGetUser)
	userGroup.DELETE("/deleteUser/", h.handleDeleteUser)
	userGroup.DELETE("/deleteUser/:username", h.handleDeleteUser)
	userGroup.PATCH("/resetPassword", h.handleResetPassword)

	messageGroup := router.Group("/messaging")
	messageGroup.POST("/addMessage", h.handleAddMessage)
	messageGroup.GET("/getMessages", h.handleGetMessages)

	questionGroup := router.Group("/question")
	questionGroup.POST("/addQuestion", h.handleAddQuestion)
	questionGroup.GET("/getQuestion", h.handleGetQuestions)
	questionGroup.GET("/getQuestionById/:qid", h.handleGetQuestionByID)
	questionGroup.POST("/upvoteQuestion", h.handleVote(models.Upvote))
	questionGroup.POST("/downvoteQuestion", h.handleVote(models.Downvote))

	answerGroup := router.Group("/answer")
	answerGroup.POST("/addAnswer", h.handleAddAnswer)

	commentGroup := router.Group("/comment")
	commentGroup.POST("/addComment", h.handleAddComment)

	tagGroup := router.Group("/tag")
	tagGroup.GET("/getTagsWithQuestionNumber", h.handleGetTagsWithQuestionNumber)
	tagGroup.GET("/getTagByName/:name", h.handleGetTagByName)
}

// publicErrors holds the message clients see for each service failure.
var publicErrors = []struct {
	err     error
	message string
}{
	{auth.ErrSaveUser, "Error when saving a user"},
	{auth.ErrInvalidCredentials, "Invalid username or password"},
	{auth.ErrLogin, "Error during login"},
	{auth.ErrUserNotFound, "User not found"},
	{auth.ErrGetUser, "Error when retrieving user"},
	{auth.ErrDeleteUser, "Error when deleting user"},
	{auth.ErrUpdateUser, "Error when updating user"},
	{messaging.ErrSaveMessage, "Error when saving a message"},
	{forum.ErrQuestionNotFound, "Question not found"},
	{forum.ErrAnswerNotFound, "Answer not found"},
	{forum.ErrTagNotFound, "Tag not found"},
	{forum.ErrSaveQuestion, "Error when saving question"},
	{forum.ErrFetchQuestions, "Error when fetching questions"},
	{forum.ErrFetchQuestion, "Error when fetching question by id"},
	{forum.ErrVote, "Error when updating votes"},
	{forum.ErrSaveAnswer, "Error when adding answer"},
	{forum.ErrSaveComment, "Error when adding comment"},
	{forum.ErrFetchTags, "Error when fetching tags"},
}

func publicMessage(err error) string {
	for _, pe := range publicErrors {
		if errors.Is(err, pe.err) {
			return pe.message
		}
	}
	return "Internal server error"
}

// writeError answers with {"error": message}. Internal details stay in the log.
func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

// rejectBody answers a malformed request with a plain-text description.
func rejectBody(c *gin.Context, description string) {
	c.String(http.StatusBadRequest, description)
}
