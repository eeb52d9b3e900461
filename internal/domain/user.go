package domain

import "time"

// User — зарегистрированный пользователь витрины.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
