// Package account регистрирует покупателей витрины.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// DefaultBcryptCost — стоимость bcrypt для паролей.
const DefaultBcryptCost = 10

// Service создаёт учётные записи.
type Service struct {
	users  domain.UserRepository
	cost   int
	logger *log.Entry
	now    func() time.Time
}

// NewService создаёт сервис регистрации. cost <= 0 означает DefaultBcryptCost.
func NewService(users domain.UserRepository, cost int, logger *log.Entry) *Service {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	if logger == nil {
		logger = log.WithField("component", "account-service")
	}
	return &Service{
		users:  users,
		cost:   cost,
		logger: logger,
		now:    time.Now,
	}
}

// Signup регистрирует пользователя. Все поля обязательны; email приводится
// к нижнему регистру, пароль хранится только в виде bcrypt-хэша.
func (s *Service) Signup(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return domain.User{}, domain.ErrSignupFieldsRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user signed up")
	return user, nil
}

// CheckPassword сверяет пароль с сохранённым хэшем.
func CheckPassword(user domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
