package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService() *Service {
	s := New(memory.NewStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: " Ann@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAudience, u.Role)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ann 2", Email: "ann@example.com", Password: "another one"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Login(ctx, domain.RoleAudience, "ANN@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, domain.RoleAudience, "ann@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.RoleAudience, "bob@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// the same email is a separate account per role
	_, err = svc.Login(ctx, domain.RoleAdmin, "ann@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	admin, err := svc.CreateAdmin(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "admin password"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = svc.Get(ctx, domain.RoleAdmin, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Get(ctx, domain.RoleAdmin, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegister_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"no name", RegisterInput{Email: "a@example.com", Password: "long enough"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "long enough"}},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
