package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// UserRepository — in-memory хранилище пользователей, уникальных по email.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

// NewUserRepository создаёт пустое хранилище пользователей.
func NewUserRepository() *UserRepository {
	return &UserRepository{byEmail: make(map[string]domain.User)}
}

// Create сохраняет пользователя.
func (r *UserRepository) Create(_ context.Context, user domain.User) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return domain.ErrUserAlreadyExists
	}
	user.Email = email
	r.byEmail[email] = user
	return nil
}

// GetByEmail ищет пользователя по email без учёта регистра.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
