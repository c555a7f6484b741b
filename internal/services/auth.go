package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyhub/studyhub-gobackend/internal/apperr"
	"github.com/studyhub/studyhub-gobackend/internal/models"
	"github.com/studyhub/studyhub-gobackend/internal/repository"
)

// AuthStore is the data access the auth service needs.
type AuthStore interface {
	InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	store  AuthStore
	tokens *TokenManager
	logger *zap.Logger
}

func NewAuthService(store AuthStore, tokens *TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: logger}
}

// Register creates an account with a bcrypt-hashed password. Admin accounts
// are seeded out of band; the API only issues student and instructor roles.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleInstructor {
		return nil, apperr.New(http.StatusBadRequest, "Role must be student or instructor")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to create account", err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		HPassword: string(hashed),
		Role:      role,
	}

	if _, err := s.store.InsertUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.New(http.StatusConflict, "Email already registered")
		}
		s.logger.Error("Failed to insert user", zap.Error(err))
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to create account", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.Hex()), zap.String("role", user.Role))
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, apperr.New(http.StatusUnauthorized, "Invalid email or password")
		}
		return "", nil, apperr.Wrap(http.StatusInternalServerError, "Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HPassword), []byte(password)); err != nil {
		return "", nil, apperr.New(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return "", nil, apperr.Wrap(http.StatusInternalServerError, "Login failed", err)
	}
	return token, user, nil
}

// GetUser resolves an authenticated user id back to its document.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "Invalid user id")
	}
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(http.StatusNotFound, "User not found")
		}
		return nil, apperr.Wrap(http.StatusInternalServerError, "Failed to fetch user", err)
	}
	return user, nil
}
