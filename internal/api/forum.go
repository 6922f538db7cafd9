package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/forum"
	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/validate"
)

const invalidIDFormat = "Invalid ID format"

type tagRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
}

type questionRequest struct {
	Title       string          `json:"title" validate:"notblank,max=100"`
	Text        string          `json:"text" validate:"notblank"`
	Tags        []tagRequest    `json:"tags" validate:"min=1,dive"`
	AskedBy     string          `json:"askedBy" validate:"notblank"`
	AskDateTime json.RawMessage `json:"askDateTime"`

	AskedAt time.Time `json:"-" validate:"instant"`
}

type voteRequest struct {
	QID      string `json:"qid" validate:"notblank"`
	Username string `json:"username" validate:"notblank"`
}

type answerBody struct {
	Text        string          `json:"text" validate:"notblank"`
	AnsBy       string          `json:"ansBy" validate:"notblank"`
	AnsDateTime json.RawMessage `json:"ansDateTime"`

	AnsweredAt time.Time `json:"-" validate:"instant"`
}

type answerRequest struct {
	QID string     `json:"qid" validate:"notblank"`
	Ans answerBody `json:"ans"`
}

type commentBody struct {
	Text            string          `json:"text" validate:"notblank,max=500"`
	CommentBy       string          `json:"commentBy" validate:"notblank"`
	CommentDateTime json.RawMessage `json:"commentDateTime"`

	CommentedAt time.Time `json:"-" validate:"instant"`
}

type commentRequest struct {
	ID      string          `json:"id" validate:"notblank"`
	Type    string          `json:"type" validate:"oneof=question answer"`
	Comment json.RawMessage `json:"comment"`
}

// writeForumError maps a forum failure onto a response: malformed ids are a request
// problem, missing documents are 404 and anything else is a server error.
func writeForumError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, forum.ErrInvalidID):
		rejectBody(c, invalidIDFormat)
	case errors.Is(err, forum.ErrQuestionNotFound),
		errors.Is(err, forum.ErrAnswerNotFound),
		errors.Is(err, forum.ErrTagNotFound):
		writeError(c, http.StatusNotFound, err)
	default:
		writeError(c, http.StatusInternalServerError, err)
	}
}

func (h *Handler) handleAddQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("decode question failed", zap.Error(err))
		rejectBody(c, "Invalid question body")
		return
	}
	req.AskedAt, _ = validate.ParseInstant(req.AskDateTime)

	result := validate.Struct(req)
	if !result.OK() {
		h.logger.Debug("question rejected", zap.Strings("problems", result.Problems))
		rejectBody(c, "Invalid question body")
		return
	}

	question, err := h.forum.AddQuestion(c.Request.Context(), forum.NewQuestion{
		Title:       req.Title,
		Text:        req.Text,
		AskedBy:     req.AskedBy,
		AskDateTime: req.AskedAt,
		Tags: lo.Map(req.Tags, func(t tagRequest, _ int) models.Tag {
			return models.Tag{Name: t.Name, Description: t.Description}
		}),
	})
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *Handler) handleGetQuestions(c *gin.Context) {
	order := forum.ParseOrder(c.Query("order"))

	questions, err := h.forum.GetQuestions(c.Request.Context(), order, c.Query("search"))
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

func (h *Handler) handleGetQuestionByID(c *gin.Context) {
	question, err := h.forum.GetQuestionByID(c.Request.Context(), c.Param("qid"), c.Query("username"))
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *Handler) handleVote(kind models.VoteKind) gin.HandlerFunc {
	confirmation := "Question upvoted successfully"
	if kind == models.Downvote {
		confirmation = "Question downvoted successfully"
	}

	return func(c *gin.Context) {
		var req voteRequest
		if err := c.ShouldBindJSON(&req); err != nil || !validate.Struct(req).OK() {
			rejectBody(c, "Invalid request")
			return
		}

		tally, err := h.forum.Vote(c.Request.Context(), req.QID, req.Username, kind)
		if err != nil {
			writeForumError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"msg":       confirmation,
			"upVotes":   tally.UpVotes,
			"downVotes": tally.DownVotes,
		})
	}
}

func (h *Handler) handleAddAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rejectBody(c, "Invalid answer")
		return
	}
	req.Ans.AnsweredAt, _ = validate.ParseInstant(req.Ans.AnsDateTime)

	if result := validate.Struct(req); !result.OK() {
		h.logger.Debug("answer rejected", zap.Strings("problems", result.Problems))
		rejectBody(c, "Invalid answer")
		return
	}

	answer, err := h.forum.AddAnswer(c.Request.Context(), req.QID, forum.NewAnswer{
		Text:        req.Ans.Text,
		AnsBy:       req.Ans.AnsBy,
		AnsDateTime: req.Ans.AnsweredAt,
	})
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

func (h *Handler) handleAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validate.Struct(req).OK() || !isJSONComposite(req.Comment) {
		rejectBody(c, "Invalid request")
		return
	}

	var body commentBody
	if err := json.Unmarshal(req.Comment, &body); err != nil {
		rejectBody(c, "Invalid comment")
		return
	}
	body.CommentedAt, _ = validate.ParseInstant(body.CommentDateTime)

	if result := validate.Struct(body); !result.OK() {
		h.logger.Debug("comment rejected", zap.Strings("problems", result.Problems))
		rejectBody(c, "Invalid comment")
		return
	}

	in := forum.NewComment{
		Text:            body.Text,
		CommentBy:       body.CommentBy,
		CommentDateTime: body.CommentedAt,
	}

	var (
		parent any
		err    error
	)
	switch forum.CommentTarget(req.Type) {
	case forum.TargetQuestion:
		parent, err = h.forum.CommentOnQuestion(c.Request.Context(), req.ID, in)
	default:
		parent, err = h.forum.CommentOnAnswer(c.Request.Context(), req.ID, in)
	}
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, parent)
}

func (h *Handler) handleGetTagsWithQuestionNumber(c *gin.Context) {
	tags, err := h.forum.GetTagsWithQuestionNumber(c.Request.Context())
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

func (h *Handler) handleGetTagByName(c *gin.Context) {
	tag, err := h.forum.GetTagByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeForumError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}
