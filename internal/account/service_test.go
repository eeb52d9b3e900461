package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/memory"
)

func TestSignup_CreatesUserWithHashedPassword(t *testing.T) {
	users := memory.NewUserRepository()
	svc := NewService(users, bcrypt.MinCost, nil)

	user, err := svc.Signup(context.Background(), "  Ann  ", " Ann@Example.COM ", "s3cret")
	require.NoError(t, err)

	require.NotEmpty(t, user.ID)
	require.Equal(t, "Ann", user.Name)
	require.Equal(t, "ann@example.com", user.Email)
	require.NotEqual(t, "s3cret", user.PasswordHash)
	require.True(t, CheckPassword(user, "s3cret"))
	require.False(t, CheckPassword(user, "wrong"))

	stored, err := users.GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestSignup_RequiresAllFields(t *testing.T) {
	svc := NewService(memory.NewUserRepository(), bcrypt.MinCost, nil)

	tests := []struct {
		name, userName, email, password string
	}{
		{name: "missing name", email: "a@b.c", password: "x"},
		{name: "blank name", userName: "   ", email: "a@b.c", password: "x"},
		{name: "missing email", userName: "Ann", password: "x"},
		{name: "missing password", userName: "Ann", email: "a@b.c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.userName, tc.email, tc.password)
			require.True(t, errors.Is(err, domain.ErrSignupFieldsRequired), "got %v", err)
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := NewService(memory.NewUserRepository(), bcrypt.MinCost, nil)

	_, err := svc.Signup(context.Background(), "Ann", "ann@example.com", "one")
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "Ann Two", "ANN@example.com", "two")
	require.True(t, errors.Is(err, domain.ErrUserAlreadyExists))
}

func TestNewService_DefaultCost(t *testing.T) {
	svc := NewService(memory.NewUserRepository(), 0, nil)
	require.Equal(t, DefaultBcryptCost, svc.cost)
}
