package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryanracha/civiclens/internal/pkg/token"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// UserStore is the persistence surface the auth flows need.
type UserStore interface {
	Insert(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
}

// Service implements signup, login, and the current-user lookup.
type Service struct {
	store  UserStore
	tokens *token.Manager
}

func NewService(store UserStore, tokens *token.Manager) *Service {
	return &Service{store: store, tokens: tokens}
}

// Signup registers a new citizen account and returns a signed session.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashed),
		Role:     RoleUser,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an account with this email already exists", apperrors.ErrDuplicate)
		}
		return nil, err
	}

	return s.session(user)
}

// Login verifies credentials and returns a signed session. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	return s.session(user)
}

// CurrentUser resolves the authenticated user's profile.
func (s *Service) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*User, error) {
	return s.store.FindByID(ctx, userID)
}

func (s *Service) session(user *User) (*AuthResponse, error) {
	signed, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResponse{Token: signed, User: user}, nil
}
