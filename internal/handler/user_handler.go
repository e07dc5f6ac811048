package handler

import (
	"context"
	"errors"
	"net/http"

	"todoapp/internal/identity"
	"todoapp/internal/model"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Profile(ctx context.Context, id string) (*model.User, error)
}

type TokenGenerator interface {
	GenerateToken(claims identity.Claims) (string, error)
}

// TaskCounter reports how many tasks a user holds.
type TaskCounter interface {
	OwnedCount(ctx context.Context, callerID string) (int64, error)
}

type UserHandler struct {
	users  UserService
	tokens TokenGenerator
	tasks  TaskCounter
}

func NewUserHandler(users UserService, tokens TokenGenerator, tasks TaskCounter) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, tasks: tasks}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        string   `json:"id"`
	UserName  string   `json:"user_name"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type MeResponse struct {
	User      UserResponse `json:"user"`
	IsAdmin   bool         `json:"is_admin"`
	TaskCount int64        `json:"task_count"`
	MaxTasks  int          `json:"max_tasks"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     u.RoleNames(),
	}
}

// Register godoc
// @Summary  Register a new user
// @Tags     Users
// @Accept   json
// @Produce  json
// @Param    user body RegisterRequest true "account"
// @Success  201 {object} AuthResponse
// @Failure  409 {object} map[string]string
// @Router   /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	switch {
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	case errors.Is(err, service.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create failed"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login godoc
// @Summary  Log in
// @Tags     Users
// @Accept   json
// @Produce  json
// @Param    credentials body LoginRequest true "credentials"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} map[string]string
// @Router   /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Me godoc
// @Summary   Current user
// @Tags      Users
// @Produce   json
// @Success   200 {object} MeResponse
// @Security  BearerAuth
// @Router    /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	user, err := h.users.Profile(c.Request.Context(), caller.CurrentUserID())
	if err != nil {
		if service.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	count, err := h.tasks.OwnedCount(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		User:      toUserResponse(user),
		IsAdmin:   identity.IsAdmin(caller),
		TaskCount: count,
		MaxTasks:  service.MaxTasksPerUser,
	})
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user *model.User) {
	token, err := h.tokens.GenerateToken(identity.Claims{
		UserID:    user.ID,
		Roles:     user.RoleNames(),
		FirstName: user.FirstName,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token error"})
		return
	}

	c.JSON(status, AuthResponse{Token: token, User: toUserResponse(user)})
}
