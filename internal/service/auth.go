package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/auth"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/store"
	"github.com/propsnap/propsnap/internal/validation"
)

type AuthOptions struct {
	JWT    *auth.JWTManager
	Hasher *auth.PasswordHasher
}

// AuthService registers users and issues session tokens.
type AuthService struct {
	deps   *Deps
	jwt    *auth.JWTManager
	hasher *auth.PasswordHasher
}

// NewAuthService returns an AuthService. A nil Hasher uses the default bcrypt cost.
func NewAuthService(deps *Deps, opts AuthOptions) *AuthService {
	hasher := opts.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(0)
	}
	return &AuthService{deps: deps, jwt: opts.JWT, hasher: hasher}
}

type RegisterUserInput struct {
	Name        string `json:"name" validate:"required,min=1"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Phone       string `json:"phone" validate:"required,len=10,numeric"`
	CountryCode string `json:"countryCode" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register creates a user. The stored phone is the country code followed by
// the number.
func (s *AuthService) Register(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.CountryCode = strings.TrimSpace(in.CountryCode)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.deps.Store.Users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("user already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperr.FieldError("password", "must be at most 72 bytes")
	}
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Phone:    in.CountryCode + in.Phone,
	}
	if err := s.deps.Store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, err
	}
	return u, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	invalid := apperr.Unauthenticated("invalid email or password")
	u, err := s.deps.Store.Users.FindByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Compare(u.Password, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid
	}

	token, expiresAt, err := s.jwt.Generate(auth.Principal{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Me returns the principal's user record.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	u, err := s.deps.Store.Users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}
