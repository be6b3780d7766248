package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/apperr"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/middleware"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
)

// AuthCommander defines the write-side operations used by AuthHandler.
type AuthCommander interface {
	Signup(context.Context, cqrs.SignupCommand) (*models.AuthResult, error)
}

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (*models.AuthResult, error)
	Verify(context.Context, cqrs.VerifyTokenQuery) (*models.UserView, error)
}

type AuthHandler struct {
	commands AuthCommander
	queries  AuthQuerier
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    models.AuthUser `json:"user"`
}

type VerifyResponse struct {
	User models.AuthUser `json:"user"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.commands.Signup(c.Request.Context(), cqrs.SignupCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		Message: "User created successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Verify answers every authentication failure with 401.
func (h *AuthHandler) Verify(c *gin.Context) {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		// Anything other than a well-formed bearer header is passed through so
		// that it fails verification instead of reading as "no token".
		tokenString = c.GetHeader("Authorization")
	}

	view, err := h.queries.Verify(c.Request.Context(), cqrs.VerifyTokenQuery{Token: tokenString})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			middleware.RespondWithError(c, http.StatusUnauthorized, apperr.MessageOf(err))
			return
		}
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{User: view.AuthUser()})
}
