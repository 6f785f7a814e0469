package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// AuthService проверяет административный пароль. Отдельной таблицы
// пользователей нет: административные действия (удаление игроков и
// турниров, импорт) защищены одним паролем из конфигурации.
type AuthService struct {
	adminPasswordHash []byte
}

func NewAuthService(adminPasswordHash string) *AuthService {
	return &AuthService{adminPasswordHash: []byte(adminPasswordHash)}
}

// VerifyAdminPassword сравнивает пароль с bcrypt-хешем из конфигурации.
func (s *AuthService) VerifyAdminPassword(_ context.Context, password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return ErrAuthenticationFailed
	}
	return nil
}

// HashPassword — утилита для генерации хеша под ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
