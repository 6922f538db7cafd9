package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/validate"
)

type addMessageRequest struct {
	MessageToAdd json.RawMessage `json:"messageToAdd"`
}

type messageBody struct {
	Msg         string          `json:"msg" validate:"notblank"`
	MsgFrom     string          `json:"msgFrom" validate:"notblank"`
	MsgDateTime json.RawMessage `json:"msgDateTime"`

	SentAt time.Time `json:"-" validate:"instant"`
}

// isJSONComposite reports whether raw holds an object or an array. Null and scalars are
// not a request payload; an array is one whose content is then rejected.
func isJSONComposite(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func (h *Handler) handleAddMessage(c *gin.Context) {
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || !isJSONComposite(req.MessageToAdd) {
		rejectBody(c, "Invalid request")
		return
	}

	var body messageBody
	if err := json.Unmarshal(req.MessageToAdd, &body); err != nil {
		h.logger.Debug("decode message failed", zap.Error(err))
		rejectBody(c, "Invalid message")
		return
	}
	body.SentAt, _ = validate.ParseInstant(body.MsgDateTime)

	result := validate.Struct(body)
	if !result.OK() {
		h.logger.Debug("message rejected", zap.Strings("problems", result.Problems))
		rejectBody(c, "Invalid message")
		return
	}

	saved, err := h.messages.AddMessage(c.Request.Context(), models.Message{
		Msg:         body.Msg,
		MsgFrom:     body.MsgFrom,
		MsgDateTime: body.SentAt,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (h *Handler) handleGetMessages(c *gin.Context) {
	c.JSON(http.StatusOK, h.messages.GetMessages(c.Request.Context()))
}
