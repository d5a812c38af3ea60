// Package users registers audiences and admins and checks their passwords.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	store repository.Store
	log   *slog.Logger
	cost  int
	now   func() time.Time
}

func New(store repository.Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (in RegisterInput) Validate() error {
	return domain.Invalid(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
	))
}

// Register creates an AUDIENCE account.
//
// Returns:
//   - *domain.User: the created user.
//   - error: domain.ErrValidation for malformed input.
//   - error: users.ErrEmailTaken if the email is already registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, "service.users.Register", domain.RoleAudience, in)
}

// CreateAdmin creates an ADMIN account. Used by the seed command.
func (s *Service) CreateAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, "service.users.CreateAdmin", domain.RoleAdmin, in)
}

func (s *Service) create(ctx context.Context, op string, role domain.Role, in RegisterInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u := &domain.User{
		ID:           uuid.New(),
		Role:         role,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user created", slog.String("user_id", u.ID.String()), slog.String("role", string(role)))

	return u, nil
}

// Login checks the password of the user with the given role and email.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, role domain.Role, email, password string) (*domain.User, error) {
	const op = "service.users.Login"

	u, err := s.store.Users().GetByEmail(ctx, role, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, role domain.Role, id uuid.UUID) (*domain.User, error) {
	const op = "service.users.Get"

	u, err := s.store.Users().Get(ctx, role, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}
