package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// UserRepository хранит покупателей в таблице users.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию domain.UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{db: store.DB()}
}

// Create вставляет пользователя; нарушение уникального индекса по email → ErrUserAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByEmail ищет пользователя по email без учёта регистра.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var user domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email)).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
