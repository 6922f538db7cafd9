package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/models"
	"github.com/wuwenbin0122/fakeso/internal/validate"
)

const invalidUserBody = "Invalid user body"

type userRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type resetPasswordRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// bindUser decodes and validates a {username, password} body, answering 400 on failure.
func (h *Handler) bindUser(c *gin.Context) (userRequest, bool) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("decode user body failed", zap.Error(err))
		rejectBody(c, invalidUserBody)
		return userRequest{}, false
	}

	result := validate.Struct(req)
	if !result.OK() {
		h.logger.Debug("user body rejected", zap.Strings("problems", result.Problems))
		rejectBody(c, invalidUserBody)
		return userRequest{}, false
	}
	return result.Value, true
}

func (h *Handler) handleSignup(c *gin.Context) {
	req, ok := h.bindUser(c)
	if !ok {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) handleLogin(c *gin.Context) {
	req, ok := h.bindUser(c)
	if !ok {
		return
	}

	user, err := h.users.Login(c.Request.Context(), models.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, http.StatusUnauthorized, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) handleGetUser(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	user, err := h.users.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		rejectBody(c, invalidUserBody)
		return
	}

	user, err := h.users.DeleteUserByUsername(c.Request.Context(), username)
	if err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validate.Struct(req).OK() {
		rejectBody(c, invalidUserBody)
		return
	}

	user, err := h.users.ResetPassword(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
