package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"todoapp/internal/identity"
	"todoapp/internal/model"
	"todoapp/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
}

type UserService struct {
	users    repository.UserRepositoryInterface
	validate *validator.Validate
	logger   *slog.Logger
	hashCost int
}

func NewUserService(users repository.UserRepositoryInterface, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		validate: validator.New(),
		logger:   logger.With("component", "user_service"),
		hashCost: bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost, for tests.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

// Register creates an account in the User role. The email doubles as the
// user name.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}
	return s.createUser(ctx, in, identity.RoleUser)
}

// Authenticate checks the password and returns the user with roles loaded.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		s.logger.Info("failed login", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Seed makes sure the Admin and User roles exist and that an admin account
// with adminEmail holds the Admin role.
func (s *UserService) Seed(ctx context.Context, adminEmail, adminPassword string) error {
	if err := s.users.EnsureRoles(ctx, identity.RoleAdmin, identity.RoleUser); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" {
		return nil
	}
	existing, err := s.users.FindByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		return s.users.AddRole(ctx, existing.ID, identity.RoleAdmin)
	}

	_, err = s.createUser(ctx, RegisterInput{
		Email:     adminEmail,
		Password:  adminPassword,
		FirstName: "Admin",
		LastName:  "User",
	}, identity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("admin account created", "email", adminEmail)
	return nil
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, role string) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		UserName:       in.Email,
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		HashedPassword: string(hash),
		Roles:          []model.Role{{Name: role}},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// IsNotFound reports whether err means the referenced user does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrTaskNotFound)
}
