package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/middleware"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	UpdateProfile(context.Context, cqrs.UpdateProfileCommand) (*models.UserView, error)
	ChangePassword(context.Context, cqrs.ChangePasswordCommand) error
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetProfile(context.Context, cqrs.GetProfileQuery) (*models.UserView, error)
}

// UserHandler serves the caller's own profile. There is no way to address
// another user.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type UpdateProfileRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := identity(c)
	if !ok {
		return
	}

	view, err := h.queries.GetProfile(c.Request.Context(), cqrs.GetProfileQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := identity(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := h.commands.UpdateProfile(c.Request.Context(), cqrs.UpdateProfileCommand{
		UserID: userID,
		Email:  req.Email,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := identity(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.commands.ChangePassword(c.Request.Context(), cqrs.ChangePasswordCommand{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}
